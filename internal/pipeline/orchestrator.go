// Package pipeline provides the orchestration of the interview-prep generation stages
// and the background runner that executes one job per goroutine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/interview-prep/internal/jobstore"
	"github.com/jonathan/interview-prep/internal/review"
	"github.com/jonathan/interview-prep/internal/stages"
	"github.com/jonathan/interview-prep/internal/types"
	"go.uber.org/zap"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	JobID   string      `json:"job_id"`
	Stage   types.Stage `json:"stage"`
	Message string      `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Orchestrator runs the stages of one job in order and records every transition in the store.
type Orchestrator struct {
	deps       stages.Deps
	reviewer   *review.Reviewer
	store      *jobstore.Store
	log        *zap.SugaredLogger
	onProgress ProgressCallback
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProgress sets the progress callback.
func WithProgress(cb ProgressCallback) Option {
	return func(o *Orchestrator) { o.onProgress = cb }
}

// WithLogger sets the orchestrator logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(deps stages.Deps, store *jobstore.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{deps: deps, store: store, log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(o)
	}
	if o.deps.Log == nil {
		o.deps.Log = o.log
	}
	o.reviewer = review.New(deps.Caller, o.log)
	return o
}

// jobRun carries the intermediate outputs of one job.
type jobRun struct {
	id         string
	inputs     types.JobInputs
	job        types.JobDetails
	profile    types.ProfileAnalysis
	highlights types.CandidateHighlights
	company    types.CompanyInfo
	rounds     []types.RoundDescriptor
	generated  []types.InterviewRound
}

// plannedStage binds a registry entry to the method that runs it.
type plannedStage struct {
	stage types.Stage
	fn    func(context.Context, *jobRun) error
}

// plan checks the stage order and resolves each stage to its handler.
func (o *Orchestrator) plan(defs []StageDefinition) ([]plannedStage, error) {
	if err := ValidateOrder(defs); err != nil {
		return nil, err
	}
	handlers := map[types.Stage]func(context.Context, *jobRun) error{
		types.StageJobResearch:              o.jobResearch,
		types.StageProfileAnalysis:          o.profileAnalysis,
		types.StageHighlightGeneration:      o.highlightGeneration,
		types.StageCompanyResearch:          o.companyResearch,
		types.StageInterviewPatternResearch: o.interviewPatterns,
		types.StageQuestionGeneration:       o.questionGeneration,
		types.StageQualityCheck:             o.qualityCheck,
	}
	out := make([]plannedStage, 0, len(defs))
	for _, def := range defs {
		fn, ok := handlers[def.Stage]
		if !ok {
			return nil, &MissingHandlerError{Stage: def.Stage}
		}
		out = append(out, plannedStage{stage: def.Stage, fn: fn})
	}
	return out, nil
}

// Run executes every stage for an existing job. It returns the fatal error, if any,
// after recording it on the job.
func (o *Orchestrator) Run(ctx context.Context, jobID string) error {
	job, err := o.store.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.State.IsTerminal() {
		return fmt.Errorf("job %s is already %s", jobID, job.State)
	}
	run := &jobRun{id: jobID, inputs: job.Inputs}
	start := time.Now()
	o.log.Infow("Pipeline started", "job_id", jobID, "job_url", run.inputs.JobURL)

	plan, err := o.plan(StageRegistry)
	if err != nil {
		return o.fail(run.id, err)
	}

	for _, stage := range plan {
		if err := ctx.Err(); err != nil {
			return o.fail(run.id, fmt.Errorf("job cancelled before %s: %w", stage.stage, err))
		}
		if err := o.advance(run.id, stage.stage); err != nil {
			return err
		}
		stageStart := time.Now()
		if err := stage.fn(ctx, run); err != nil {
			return o.fail(run.id, err)
		}
		o.log.Debugw("Stage finished", "job_id", jobID, "stage", stage.stage, "duration", time.Since(stageStart))
	}

	o.log.Infow("Pipeline completed", "job_id", jobID, "duration", time.Since(start))
	return nil
}

func (o *Orchestrator) advance(id string, stage types.Stage) error {
	if err := o.store.Update(id, func(j *types.PipelineJob) { j.State = stage }); err != nil {
		return err
	}
	o.log.Infow("Stage started", "job_id", id, "stage", stage)
	o.emit(id, stage, stepMessage(stage))
	return nil
}

func (o *Orchestrator) emit(id string, stage types.Stage, message string) {
	if o.onProgress != nil {
		o.onProgress(ProgressEvent{JobID: id, Stage: stage, Message: message})
	}
}

func (o *Orchestrator) appendSteps(id string, steps []types.ReasoningStep) {
	if len(steps) == 0 {
		return
	}
	if err := o.store.Update(id, func(j *types.PipelineJob) {
		j.ReasoningLog = append(j.ReasoningLog, steps...)
	}); err != nil {
		o.log.Warnw("Failed to record reasoning steps", "job_id", id, "error", err)
	}
}

func (o *Orchestrator) fail(id string, cause error) error {
	msg := cause.Error()
	o.log.Errorw("Pipeline failed", "job_id", id, "error", msg)
	if err := o.store.Update(id, func(j *types.PipelineJob) {
		j.ReasoningLog = append(j.ReasoningLog, types.NewReasoningStep(types.StageFailed, msg))
		j.State = types.StageFailed
		j.Error = &msg
	}); err != nil {
		o.log.Warnw("Failed to record failure", "job_id", id, "error", err)
	}
	o.emit(id, types.StageFailed, msg)
	return cause
}

// collect records a stage result on the job and unwraps its value.
func collect[T any](o *Orchestrator, id string, stage types.Stage, r stages.Result[T]) (T, error) {
	o.appendSteps(id, r.Steps)
	if r.Outcome == stages.Degraded {
		o.log.Warnw("Stage degraded", "job_id", id, "stage", stage, "error", r.Err)
	}
	return r.Value()
}

func (o *Orchestrator) jobResearch(ctx context.Context, run *jobRun) error {
	v, err := collect(o, run.id, types.StageJobResearch, stages.JobResearch(ctx, o.deps, run.inputs))
	run.job = v
	return err
}

func (o *Orchestrator) profileAnalysis(ctx context.Context, run *jobRun) error {
	v, err := collect(o, run.id, types.StageProfileAnalysis,
		stages.ProfileAnalysis(ctx, o.deps, run.inputs.ResumeText, run.inputs.LinkedInURL))
	run.profile = v
	return err
}

func (o *Orchestrator) highlightGeneration(ctx context.Context, run *jobRun) error {
	v, err := collect(o, run.id, types.StageHighlightGeneration,
		stages.HighlightGeneration(ctx, o.deps, run.inputs.ResumeText, run.job, run.profile))
	run.highlights = v
	return err
}

func (o *Orchestrator) companyResearch(ctx context.Context, run *jobRun) error {
	v, err := collect(o, run.id, types.StageCompanyResearch,
		stages.CompanyResearch(ctx, o.deps, run.job.Company, run.job.Title, run.inputs.JobURL))
	run.company = v
	return err
}

func (o *Orchestrator) interviewPatterns(ctx context.Context, run *jobRun) error {
	v, err := collect(o, run.id, types.StageInterviewPatternResearch,
		stages.InterviewPatternResearch(ctx, o.deps, run.job.Company, run.job.Title))
	run.rounds = v
	return err
}

func (o *Orchestrator) questionGeneration(ctx context.Context, run *jobRun) error {
	v, err := collect(o, run.id, types.StageQuestionGeneration, stages.QuestionGeneration(ctx, o.deps, stages.QuestionInput{
		Job:        run.job,
		Company:    run.company,
		Highlights: run.highlights,
		Profile:    run.profile,
		Rounds:     run.rounds,
	}))
	run.generated = v
	return err
}

// ErrNoRounds is recorded when review leaves no round with questions.
var ErrNoRounds = errors.New("no interview rounds with questions could be generated")

func (o *Orchestrator) qualityCheck(ctx context.Context, run *jobRun) error {
	artifact := &types.Artifact{
		JobDetails:          run.job,
		CompanyInfo:         run.company,
		CandidateHighlights: run.highlights,
		InterviewRounds:     run.generated,
	}

	report := o.reviewer.Review(ctx, artifact, review.Input{ResumeText: run.inputs.ResumeText, Profile: run.profile})
	o.appendSteps(run.id, report.Steps)

	pruned := prune(artifact)
	if len(pruned) > 0 {
		o.log.Warnw("Pruned empty sections after review", "job_id", run.id, "pruned", pruned)
		steps := make([]types.ReasoningStep, 0, len(pruned))
		for _, p := range pruned {
			steps = append(steps, types.NewReasoningStep(types.StageQualityCheck, "Removed "+p))
		}
		o.appendSteps(run.id, steps)
	}
	if len(artifact.InterviewRounds) == 0 {
		return ErrNoRounds
	}

	questions := 0
	for _, r := range artifact.InterviewRounds {
		questions += len(r.Questions)
	}
	o.appendSteps(run.id, []types.ReasoningStep{types.NewReasoningStep(types.StageQualityCheck,
		fmt.Sprintf("Preparation guide ready with %d rounds and %d questions", len(artifact.InterviewRounds), questions))})

	job, err := o.store.Get(ctx, run.id)
	if err != nil {
		return err
	}
	artifact.ReasoningLog = job.ReasoningLog

	if err := o.store.SaveCompleted(ctx, run.id, artifact); err != nil {
		return fmt.Errorf("failed to save completed artifact: %w", err)
	}

	if err := o.store.Update(run.id, func(j *types.PipelineJob) {
		j.Result = artifact
		j.State = types.StageCompleted
	}); err != nil {
		return err
	}
	o.emit(run.id, types.StageCompleted, "Preparation guide ready")
	return nil
}

// prune removes questions without talking points and then rounds without questions.
// It returns a description of everything removed.
func prune(a *types.Artifact) []string {
	var removed []string
	rounds := a.InterviewRounds[:0]
	for _, r := range a.InterviewRounds {
		questions := r.Questions[:0]
		for _, q := range r.Questions {
			if len(q.TalkingPoints) == 0 {
				removed = append(removed, fmt.Sprintf("question %q without talking points", q.Text))
				continue
			}
			questions = append(questions, q)
		}
		r.Questions = questions
		if len(r.Questions) == 0 {
			removed = append(removed, fmt.Sprintf("round %q without questions", r.Name))
			continue
		}
		rounds = append(rounds, r)
	}
	a.InterviewRounds = rounds
	return removed
}
