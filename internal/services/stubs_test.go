package services

import (
	"context"

	"usecase-backend/internal/logging"
)

type stubBackend struct {
	name   string
	markup string
	err    error

	calls      int
	lastPrompt string
	lastInput  DiagramContext
	lastKey    string
}

func (s *stubBackend) Name() string     { return s.name }
func (s *stubBackend) Provider() string { return "stub" }

func (s *stubBackend) GenerateDiagram(ctx context.Context, prompt string, input DiagramContext, apiKey string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastInput = input
	s.lastKey = apiKey
	if s.err != nil {
		return "", s.err
	}
	return s.markup, nil
}

type stubRenderer struct {
	image []byte
	err   error

	calls      int
	lastMarkup string
}

func (s *stubRenderer) Render(ctx context.Context, markup string) ([]byte, error) {
	s.calls++
	s.lastMarkup = markup
	if s.err != nil {
		return nil, s.err
	}
	return s.image, nil
}

func newStubBackends(markup string) map[string]*stubBackend {
	return map[string]*stubBackend{
		ModelO1: {name: "o1-mini", markup: markup},
		ModelO3: {name: "o3-mini", markup: markup},
		ModelO4: {name: "o4-mini", markup: markup},
	}
}

func newTestDispatcher(backends map[string]*stubBackend) *Dispatcher {
	registered := make(map[string]Backend, len(backends))
	for id, b := range backends {
		registered[id] = b
	}
	d, err := NewDispatcher(registered, logging.Nop())
	if err != nil {
		panic(err)
	}
	return d
}

func totalCalls(backends map[string]*stubBackend) int {
	n := 0
	for _, b := range backends {
		n += b.calls
	}
	return n
}
