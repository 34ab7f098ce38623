package llm

import "fmt"

// GenerationError represents a transport or provider failure of a generation call.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError is returned when the model output is not a JSON object of the
// declared shape.
type MalformedResponseError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed response: %s", e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
