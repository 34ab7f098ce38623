package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Request is a single generation call.
type Request struct {
	Prompt string
	Tier   ModelTier
	// Schema names the embedded JSON Schema the response must satisfy. Empty skips shape checks.
	Schema string
}

// Caller performs one generation call and returns the validated JSON object.
type Caller interface {
	Call(ctx context.Context, req Request) (json.RawMessage, error)
}

// SchemaValidator checks a document against a named schema.
type SchemaValidator interface {
	Validate(name string, document []byte) error
}

// Generator is the Caller backed by a model Client. It never retries.
type Generator struct {
	client    Client
	validator SchemaValidator
	timeout   time.Duration
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithTimeout bounds each call. Zero means no bound.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.timeout = d
	}
}

// NewGenerator creates a Generator. A nil validator disables shape checks.
func NewGenerator(client Client, validator SchemaValidator, opts ...GeneratorOption) *Generator {
	g := &Generator{client: client, validator: validator}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Call sends the prompt, cleans the output and checks it is a JSON object of the declared shape.
func (g *Generator) Call(ctx context.Context, req Request) (json.RawMessage, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.client.GenerateJSON(ctx, req.Prompt, req.Tier)
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			return nil, genErr
		}
		return nil, &GenerationError{Message: "model call failed", Cause: err}
	}

	cleaned := CleanJSONBlock(text)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, &MalformedResponseError{Message: "response is not a JSON object", Raw: text, Cause: err}
	}
	if obj == nil {
		return nil, &MalformedResponseError{Message: "response is null", Raw: text}
	}

	if req.Schema != "" && g.validator != nil {
		if err := g.validator.Validate(req.Schema, []byte(cleaned)); err != nil {
			return nil, &MalformedResponseError{Message: "response does not match " + req.Schema, Raw: text, Cause: err}
		}
	}

	return json.RawMessage(cleaned), nil
}

// Decode runs one call and unmarshals the result into T.
func Decode[T any](ctx context.Context, caller Caller, req Request) (T, error) {
	var out T
	raw, err := caller.Call(ctx, req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &MalformedResponseError{Message: "response does not fit expected shape", Raw: string(raw), Cause: err}
	}
	return out, nil
}

// IsGenerationFailure reports whether err came from the generation boundary.
func IsGenerationFailure(err error) bool {
	var genErr *GenerationError
	var malformed *MalformedResponseError
	return errors.As(err, &genErr) || errors.As(err, &malformed)
}
