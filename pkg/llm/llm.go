// Package llm defines the generator seam the orchestrator calls to turn a
// prompt into free-form model text.
package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrEmptyResponse is returned when a generator produced no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Request is one generation call.
type Request struct {
	System string
	User   string
	// Model overrides the generator's default model when set.
	Model string
}

// Generator produces raw model text. Implementations must be safe for
// concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Static returns the same canned text for every request and records the
// requests it saw. Useful for demos and tests.
type Static struct {
	Text string

	mu       sync.Mutex
	requests []Request
}

func NewStatic(text string) *Static {
	return &Static{Text: text}
}

func (s *Static) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if strings.TrimSpace(s.Text) == "" {
		return "", ErrEmptyResponse
	}
	return s.Text, nil
}

// Requests returns a copy of the requests received so far.
func (s *Static) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}
