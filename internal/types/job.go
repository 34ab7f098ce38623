package types

import (
	"encoding/json"
	"time"
)

// JobInputs holds the raw inputs of a submission.
type JobInputs struct {
	JobURL      string `json:"jobUrl"`
	LinkedInURL string `json:"linkedinUrl,omitempty"`
	ResumeText  string `json:"resumeText"`
}

// ReasoningStep is one entry in the append-only audit trail of a job.
type ReasoningStep struct {
	Timestamp        time.Time `json:"timestamp"`
	Stage            Stage     `json:"stageName"`
	Note             string    `json:"note"`
	SourcesConsulted []string  `json:"sourcesConsulted,omitempty"`
}

// NewReasoningStep creates a step stamped with the current UTC time.
func NewReasoningStep(stage Stage, note string, sources ...string) ReasoningStep {
	return ReasoningStep{
		Timestamp:        time.Now().UTC(),
		Stage:            stage,
		Note:             note,
		SourcesConsulted: sources,
	}
}

// PipelineJob tracks a single background generation job.
type PipelineJob struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId,omitempty"`
	State        Stage           `json:"state"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	Inputs       JobInputs       `json:"inputs"`
	Result       *Artifact       `json:"result"`
	Error        *string         `json:"error"`
	ReasoningLog []ReasoningStep `json:"reasoningLog"`
}

// Clone returns a deep copy so readers never share slices with the owning task.
func (j *PipelineJob) Clone() *PipelineJob {
	if j == nil {
		return nil
	}
	c := *j
	if j.ReasoningLog != nil {
		c.ReasoningLog = append(make([]ReasoningStep, 0, len(j.ReasoningLog)), j.ReasoningLog...)
	}
	if j.Error != nil {
		msg := *j.Error
		c.Error = &msg
	}
	if j.Result != nil {
		c.Result = j.Result.Clone()
	}
	return &c
}

// StatusView is the polling response shape.
type StatusView struct {
	Status       JobStatus       `json:"status"`
	Progress     Stage           `json:"progress"`
	Result       *Artifact       `json:"result"`
	Error        *string         `json:"error"`
	ReasoningLog []ReasoningStep `json:"reasoningLog"`
}

// View projects the job onto the status response.
func (j *PipelineJob) View() StatusView {
	log := j.ReasoningLog
	if log == nil {
		log = []ReasoningStep{}
	}
	return StatusView{
		Status:       j.State.Status(),
		Progress:     j.State,
		Result:       j.Result,
		Error:        j.Error,
		ReasoningLog: log,
	}
}

// cloneJSON deep-copies v through its JSON form.
func cloneJSON[T any](v *T) *T {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return &out
}
