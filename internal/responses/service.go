// Package responses stores user answers to practice questions and grades them.
package responses

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/jonathan/interview-prep/internal/jobstore"
	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/stages"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/jonathan/interview-prep/schemas"
	"go.uber.org/zap"
)

// Score bounds.
const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 6
)

// Store persists answers keyed by (job, question, round).
type Store interface {
	UpsertResponse(ctx context.Context, r types.UserResponse) (*types.UserResponse, error)
	ListResponses(ctx context.Context, jobID string) ([]types.UserResponse, error)
}

// ArtifactResolver resolves a job id to its completed artifact.
type ArtifactResolver interface {
	Artifact(ctx context.Context, id string) (*types.Artifact, error)
}

// Service implements saving, listing and grading answers.
type Service struct {
	store     Store
	artifacts ArtifactResolver
	caller    llm.Caller
	log       *zap.SugaredLogger
}

// NewService creates a Service.
func NewService(store Store, artifacts ArtifactResolver, caller llm.Caller, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{store: store, artifacts: artifacts, caller: caller, log: log}
}

// SaveResponse upserts an answer. It fails with the resolver's not-found error when the job has no artifact.
func (s *Service) SaveResponse(ctx context.Context, jobID, questionID, roundID string, f types.ResponseFields) (*types.UserResponse, error) {
	if _, err := s.artifacts.Artifact(ctx, jobID); err != nil {
		return nil, err
	}
	return s.store.UpsertResponse(ctx, types.UserResponse{
		JobID:      jobID,
		QuestionID: questionID,
		RoundID:    roundID,
		Situation:  f.Situation,
		Action:     f.Action,
		Result:     f.Result,
	})
}

// ListResponses returns the saved answers for a job.
func (s *Service) ListResponses(ctx context.Context, jobID string) ([]types.UserResponse, error) {
	return s.store.ListResponses(ctx, jobID)
}

// Grade resolves the question and highlights of a job and grades the answer.
// Only an unknown job is an error; every other failure yields the default result.
func (s *Service) Grade(ctx context.Context, jobID, questionID, responseText string) (types.GradingResult, error) {
	artifact, err := s.artifacts.Artifact(ctx, jobID)
	if err != nil {
		var nf *jobstore.NotFoundError
		if errors.As(err, &nf) {
			return types.GradingResult{}, err
		}
		s.log.Warnw("failed to resolve job for grading, returning default result", "job_id", jobID, "error", err)
		return DefaultGrade(types.CandidateHighlights{}), nil
	}
	q, _ := artifact.FindQuestion(questionID)
	if q == nil {
		s.log.Warnw("grading unknown question", "job_id", jobID, "question_id", questionID)
		return DefaultGrade(artifact.CandidateHighlights), nil
	}
	return s.GradeResponse(ctx, q.Text, responseText, artifact.CandidateHighlights), nil
}

type gradeOutput struct {
	Score           float64               `json:"score"`
	Feedback        string                `json:"feedback"`
	Strengths       []string              `json:"strengths"`
	Improvements    []string              `json:"improvements"`
	SuggestedPoints types.SuggestedPoints `json:"suggestedPoints"`
}

// GradeResponse makes one generation call. The score is rounded and clamped to [1,10];
// any failure returns DefaultGrade.
func (s *Service) GradeResponse(ctx context.Context, question, responseText string, highlights types.CandidateHighlights) types.GradingResult {
	out, err := llm.Decode[gradeOutput](ctx, s.caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyGradeResponse, map[string]string{
			"Question":     question,
			"ResponseText": responseText,
			"Highlights":   stages.HighlightList(&highlights),
		}),
		Tier:   llm.TierLite,
		Schema: schemas.GradingResult,
	})
	if err != nil {
		s.log.Warnw("grading failed, returning default result", "error", err)
		return DefaultGrade(highlights)
	}

	result := types.GradingResult{
		Score:           ClampScore(out.Score),
		Feedback:        strings.TrimSpace(out.Feedback),
		Strengths:       nonNil(out.Strengths),
		Improvements:    nonNil(out.Improvements),
		SuggestedPoints: out.SuggestedPoints,
	}
	result.SuggestedPoints.Situation = nonNil(result.SuggestedPoints.Situation)
	result.SuggestedPoints.Action = nonNil(result.SuggestedPoints.Action)
	result.SuggestedPoints.Result = nonNil(result.SuggestedPoints.Result)
	return result
}

// ClampScore rounds v and clamps it into [MinScore, MaxScore].
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return DefaultScore
	}
	n := int(math.Round(v))
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}

// DefaultGrade is the fixed result returned when grading cannot run.
func DefaultGrade(highlights types.CandidateHighlights) types.GradingResult {
	var relevant, metrics []string
	for _, p := range highlights.RelevantPoints {
		if len(relevant) == 2 {
			break
		}
		relevant = append(relevant, "Connect your answer to: "+p.Text)
	}
	for _, m := range highlights.SpecificMetrics {
		if len(metrics) == 2 {
			break
		}
		metrics = append(metrics, "Quantify the outcome, for example: "+m)
	}
	if len(metrics) == 0 {
		metrics = []string{"Quantify the outcome with a concrete metric"}
	}

	return types.GradingResult{
		Score:        DefaultScore,
		Feedback:     "Automatic grading is unavailable right now. Review your answer against the STAR structure: situation, action and result.",
		Strengths:    []string{"You provided an answer to practice with"},
		Improvements: []string{"Make each STAR section specific and concise"},
		SuggestedPoints: types.SuggestedPoints{
			Situation: []string{"Set the context briefly: team, goal and constraint"},
			Action:    append([]string{"Describe the actions you personally took"}, relevant...),
			Result:    metrics,
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
