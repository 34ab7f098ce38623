// Package stages implements the research, analysis and generation steps of the
// interview-prep pipeline. Every stage returns a tagged Result.
package stages

import (
	"context"
	"errors"

	"github.com/jonathan/interview-prep/internal/fetch"
	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/types"
	"go.uber.org/zap"
)

// Outcome classifies how a stage finished.
type Outcome int

const (
	// Succeeded means the value came from successful generation.
	Succeeded Outcome = iota
	// Degraded means the value is usable but partial or a documented fallback.
	Degraded
	// Fatal means there is no value and the pipeline must stop.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Degraded:
		return "degraded"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Result is the tagged output of a stage.
type Result[T any] struct {
	value   T
	Outcome Outcome
	// Err is the cause of a Fatal or Degraded outcome, nil otherwise.
	Err   error
	Steps []types.ReasoningStep
}

// Value returns the stage output. A Fatal result yields the zero value and its error.
func (r Result[T]) Value() (T, error) {
	if r.Outcome == Fatal {
		var zero T
		if r.Err == nil {
			return zero, errors.New("stage failed")
		}
		return zero, r.Err
	}
	return r.value, nil
}

// MustValue returns the value of a non-fatal result and panics otherwise.
func (r Result[T]) MustValue() T {
	v, err := r.Value()
	if err != nil {
		panic(err)
	}
	return v
}

func succeeded[T any](v T, steps []types.ReasoningStep) Result[T] {
	return Result[T]{value: v, Outcome: Succeeded, Steps: steps}
}

func degraded[T any](v T, err error, steps []types.ReasoningStep) Result[T] {
	return Result[T]{value: v, Outcome: Degraded, Err: err, Steps: steps}
}

func fatal[T any](err error, steps []types.ReasoningStep) Result[T] {
	return Result[T]{Outcome: Fatal, Err: err, Steps: steps}
}

// PageFetcher returns the readable text of a URL.
type PageFetcher interface {
	Page(ctx context.Context, url string) (*fetch.Page, error)
}

// Deps are the collaborators shared by every stage.
type Deps struct {
	Caller llm.Caller
	Pages  PageFetcher
	Log    *zap.SugaredLogger
}

func (d Deps) log() *zap.SugaredLogger {
	if d.Log == nil {
		return zap.NewNop().Sugar()
	}
	return d.Log
}
