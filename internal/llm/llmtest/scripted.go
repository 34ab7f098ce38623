// Package llmtest provides scripted generation callers for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonathan/interview-prep/internal/llm"
)

// Handler produces the response for one call.
type Handler func(req llm.Request) (json.RawMessage, error)

// Caller answers calls by schema name and records every request.
type Caller struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	requests []llm.Request
}

// New creates an empty scripted caller. Unscripted schemas fail with a GenerationError.
func New() *Caller {
	return &Caller{handlers: make(map[string][]Handler)}
}

// On queues h for calls declaring schema. The last queued handler repeats once the queue drains.
func (c *Caller) On(schema string, h Handler) *Caller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[schema] = append(c.handlers[schema], h)
	return c
}

// Respond queues a fixed response value, marshaled to JSON.
func (c *Caller) Respond(schema string, v any) *Caller {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return c.On(schema, func(llm.Request) (json.RawMessage, error) {
		return data, nil
	})
}

// Fail queues a GenerationError for schema.
func (c *Caller) Fail(schema string) *Caller {
	return c.On(schema, func(llm.Request) (json.RawMessage, error) {
		return nil, &llm.GenerationError{Message: "scripted failure for " + schema}
	})
}

// Call implements llm.Caller.
func (c *Caller) Call(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	queue := c.handlers[req.Schema]
	var h Handler
	if len(queue) > 0 {
		h = queue[0]
		if len(queue) > 1 {
			c.handlers[req.Schema] = queue[1:]
		}
	}
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &llm.GenerationError{Message: "context done", Cause: err}
	}
	if h == nil {
		return nil, &llm.GenerationError{Message: fmt.Sprintf("no scripted response for %q", req.Schema)}
	}
	return h(req)
}

// Requests returns a copy of every request seen so far.
func (c *Caller) Requests() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.Request(nil), c.requests...)
}

// Count returns how many calls declared schema.
func (c *Caller) Count(schema string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.requests {
		if r.Schema == schema {
			n++
		}
	}
	return n
}
