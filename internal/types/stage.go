// Package types provides type definitions for structured data used throughout the interview-prep system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Stage is the progress marker of a pipeline job.
type Stage string

// Pipeline stages in execution order, followed by the two terminal states.
const (
	StageJobResearch              Stage = "JOB_RESEARCH"
	StageProfileAnalysis          Stage = "PROFILE_ANALYSIS"
	StageHighlightGeneration      Stage = "HIGHLIGHT_GENERATION"
	StageCompanyResearch          Stage = "COMPANY_RESEARCH"
	StageInterviewPatternResearch Stage = "INTERVIEW_PATTERN_RESEARCH"
	StageQuestionGeneration       Stage = "QUESTION_GENERATION"
	StageQualityCheck             Stage = "QUALITY_CHECK"
	StageCompleted                Stage = "COMPLETED"
	StageFailed                   Stage = "FAILED"
)

// PipelineStages lists the non-terminal stages in the order the orchestrator runs them.
var PipelineStages = []Stage{
	StageJobResearch,
	StageProfileAnalysis,
	StageHighlightGeneration,
	StageCompanyResearch,
	StageInterviewPatternResearch,
	StageQuestionGeneration,
	StageQualityCheck,
}

// IsTerminal reports whether no further transitions can happen from s.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageFailed
}

// JobStatus is the coarse status reported to polling clients.
type JobStatus string

// Client-facing job statuses
const (
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Status maps a stage onto the client-facing status.
func (s Stage) Status() JobStatus {
	switch s {
	case StageCompleted:
		return StatusCompleted
	case StageFailed:
		return StatusFailed
	default:
		return StatusProcessing
	}
}
