package types

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return validate
}

// UserResponse is a user's STAR-style answer to one question.
type UserResponse struct {
	JobID      string    `json:"jobId"`
	QuestionID string    `json:"questionId"`
	RoundID    string    `json:"roundId"`
	Situation  string    `json:"situation"`
	Action     string    `json:"action"`
	Result     string    `json:"result"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ResponseFields holds the free-text parts of an answer.
type ResponseFields struct {
	Situation string `json:"situation"`
	Action    string `json:"action"`
	Result    string `json:"result"`
}

// SuggestedPoints groups improvement suggestions by answer section.
type SuggestedPoints struct {
	Situation []string `json:"situation"`
	Action    []string `json:"action"`
	Result    []string `json:"result"`
}

// GradingResult is the evaluation of a single answer.
type GradingResult struct {
	Score           int             `json:"score"`
	Feedback        string          `json:"feedback"`
	Strengths       []string        `json:"strengths"`
	Improvements    []string        `json:"improvements"`
	SuggestedPoints SuggestedPoints `json:"suggestedPoints"`
}

// SaveResponseRequest is the body of a save-response call.
type SaveResponseRequest struct {
	JobID      string `json:"jobId" validate:"required"`
	QuestionID string `json:"questionId" validate:"required"`
	RoundID    string `json:"roundId" validate:"required"`
	Situation  string `json:"situation" validate:"required_without_all=Action Result"`
	Action     string `json:"action"`
	Result     string `json:"result"`
}

// Fields returns the answer text of the request.
func (r *SaveResponseRequest) Fields() ResponseFields {
	return ResponseFields{Situation: r.Situation, Action: r.Action, Result: r.Result}
}

// Validate validates the SaveResponseRequest using the validator.
func (r *SaveResponseRequest) Validate() error {
	validate := newValidator()
	return validate.Struct(r)
}

// GradeRequest is the body of a grading call.
type GradeRequest struct {
	JobID        string `json:"jobId" validate:"required"`
	QuestionID   string `json:"questionId" validate:"required"`
	ResponseText string `json:"responseText" validate:"required"`
}

// Validate validates the GradeRequest using the validator.
func (r *GradeRequest) Validate() error {
	validate := newValidator()
	return validate.Struct(r)
}
