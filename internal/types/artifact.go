package types

import "time"

// JobDetails is the structured view of a job posting produced by job research.
type JobDetails struct {
	Company        string   `json:"company"`
	Title          string   `json:"title"`
	Location       string   `json:"location"`
	RequiredSkills []string `json:"requiredSkills"`
	CultureNotes   []string `json:"cultureNotes,omitempty"`
	ProcessNotes   []string `json:"processNotes,omitempty"`
}

// Experience is one position extracted from the résumé.
type Experience struct {
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	Period       string   `json:"period,omitempty"`
	Achievements []string `json:"achievements"`
	Evidence     []string `json:"evidence"`
}

// ProfileAnalysis is the structured breakdown of the candidate's background.
// Evidence strings are verbatim résumé excerpts.
type ProfileAnalysis struct {
	Summary     string       `json:"summary"`
	Experiences []Experience `json:"experiences"`
	Skills      []string     `json:"skills"`
	Evidence    []string     `json:"evidence"`
}

// AllEvidence returns every evidence excerpt, experience evidence first, without duplicates.
func (p *ProfileAnalysis) AllEvidence() []string {
	if p == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, exp := range p.Experiences {
		for _, e := range exp.Evidence {
			add(e)
		}
	}
	for _, e := range p.Evidence {
		add(e)
	}
	return out
}

// CompanyInfo holds researched company context.
type CompanyInfo struct {
	Description   string   `json:"description"`
	Culture       []string `json:"culture"`
	BusinessFocus []string `json:"businessFocus"`
	TeamInfo      []string `json:"teamInfo"`
	RoleDetails   []string `json:"roleDetails"`
	UsefulURLs    []string `json:"usefulUrls"`
}

// HighlightPoint is a candidate strength traced back to résumé text.
type HighlightPoint struct {
	Text     string `json:"text"`
	Evidence string `json:"evidence,omitempty"`
}

// CandidateHighlights summarizes strengths and gaps against the job.
type CandidateHighlights struct {
	RelevantPoints         []HighlightPoint `json:"relevantPoints"`
	GapAreas               []string         `json:"gapAreas"`
	SpecificMetrics        []string         `json:"specificMetrics,omitempty"`
	SuggestedTalkingPoints []string         `json:"suggestedTalkingPoints,omitempty"`
}

// RoundDescriptor describes an interview round before questions exist for it.
type RoundDescriptor struct {
	Name   string `json:"name"`
	Focus  string `json:"focus"`
	Format string `json:"format"`
}

// TalkingPoint is one thing the candidate should mention when answering.
type TalkingPoint struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Evidence string `json:"evidence,omitempty"`
}

// InterviewQuestion is a practice question with its talking points.
type InterviewQuestion struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	Rationale     string         `json:"rationale,omitempty"`
	TalkingPoints []TalkingPoint `json:"talkingPoints"`
}

// InterviewRound is one round of the expected interview loop.
type InterviewRound struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Focus     string              `json:"focus"`
	Format    string              `json:"format"`
	Questions []InterviewQuestion `json:"questions"`
}

// FindQuestion returns the question with the given id and its round.
func (a *Artifact) FindQuestion(questionID string) (*InterviewQuestion, *InterviewRound) {
	if a == nil {
		return nil, nil
	}
	for i := range a.InterviewRounds {
		r := &a.InterviewRounds[i]
		for j := range r.Questions {
			if r.Questions[j].ID == questionID {
				return &r.Questions[j], r
			}
		}
	}
	return nil, nil
}

// Artifact is the completed interview preparation result.
type Artifact struct {
	JobDetails          JobDetails          `json:"jobDetails"`
	CompanyInfo         CompanyInfo         `json:"companyInfo"`
	CandidateHighlights CandidateHighlights `json:"candidateHighlights"`
	InterviewRounds     []InterviewRound    `json:"interviewRounds"`
	ReasoningLog        []ReasoningStep     `json:"reasoningLog"`
}

// Clone returns a deep copy of the artifact.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	return cloneJSON(a)
}

// ArtifactSummary is a history row.
type ArtifactSummary struct {
	ID        string    `json:"id"`
	JobTitle  string    `json:"jobTitle"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StoredArtifact is a durable artifact record.
type StoredArtifact struct {
	ID        string
	UserID    string
	JobURL    string
	Artifact  Artifact
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Summary projects the record onto a history row.
func (s *StoredArtifact) Summary() ArtifactSummary {
	return ArtifactSummary{
		ID:        s.ID,
		JobTitle:  s.Artifact.JobDetails.Title,
		Company:   s.Artifact.JobDetails.Company,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
