package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"usecase-backend/internal/logging"
	"usecase-backend/internal/models"
)

func newTestService(backends map[string]*stubBackend, renderer *stubRenderer, render bool) *DiagramService {
	return NewDiagramService(NewValidator(5000), newTestDispatcher(backends), renderer, render, logging.Nop())
}

func TestDiagramService_Rendered(t *testing.T) {
	backends := newStubBackends("graph TD;A-->B")
	renderer := &stubRenderer{image: []byte("<svg></svg>")}
	svc := newTestService(backends, renderer, true)

	d, err := svc.Generate(context.Background(), models.UseCaseRequest{Description: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Markup != "graph TD;A-->B" {
		t.Errorf("unexpected markup %q", d.Markup)
	}
	if !bytes.Equal(d.Image, []byte("<svg></svg>")) {
		t.Errorf("unexpected image %q", d.Image)
	}
	if d.Model != ModelO1 {
		t.Errorf("expected default model, got %q", d.Model)
	}
	if renderer.calls != 1 || renderer.lastMarkup != "graph TD;A-->B" {
		t.Errorf("expected one render of the markup, got %d calls with %q", renderer.calls, renderer.lastMarkup)
	}
}

func TestDiagramService_MarkupOnly(t *testing.T) {
	backends := newStubBackends("sequenceDiagram\nA->>B: hi")
	renderer := &stubRenderer{image: []byte("<svg></svg>")}
	svc := newTestService(backends, renderer, false)

	d, err := svc.Generate(context.Background(), models.UseCaseRequest{Description: "test", Model: "o4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Image != nil {
		t.Errorf("expected no image in markup mode")
	}
	if renderer.calls != 0 {
		t.Errorf("renderer must not be called in markup mode")
	}
	if backends[ModelO4].calls != 1 {
		t.Errorf("expected o4 backend to be used")
	}
}

func TestDiagramService_ValidationStopsBeforeDispatch(t *testing.T) {
	backends := newStubBackends("graph TD;A-->B")
	renderer := &stubRenderer{}
	svc := newTestService(backends, renderer, true)

	_, err := svc.Generate(context.Background(), models.UseCaseRequest{Description: strings.Repeat("x", 5001)})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := totalCalls(backends); n != 0 {
		t.Fatalf("expected zero dispatch calls, got %d", n)
	}
	if renderer.calls != 0 {
		t.Fatalf("expected zero render calls, got %d", renderer.calls)
	}
}

func TestDiagramService_EmptyMarkup(t *testing.T) {
	for _, markup := range []string{"", "   \n\t", "```mermaid\n```"} {
		backends := newStubBackends(markup)
		renderer := &stubRenderer{image: []byte("<svg></svg>")}
		svc := newTestService(backends, renderer, true)

		_, err := svc.Generate(context.Background(), models.UseCaseRequest{Description: "test"})

		var empty *EmptyResultError
		if !errors.As(err, &empty) {
			t.Fatalf("markup %q: expected EmptyResultError, got %v", markup, err)
		}
		if renderer.calls != 0 {
			t.Fatalf("markup %q: renderer must not be called", markup)
		}
	}
}

func TestDiagramService_RenderFailureDropsMarkup(t *testing.T) {
	backends := newStubBackends("graph TD;A-->B")
	renderer := &stubRenderer{err: &RenderingError{Status: 400}}
	svc := newTestService(backends, renderer, true)

	d, err := svc.Generate(context.Background(), models.UseCaseRequest{Description: "test"})

	var rerr *RenderingError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenderingError, got %v", err)
	}
	if d != nil {
		t.Fatalf("expected no diagram on render failure, got %+v", d)
	}
}

func TestCleanMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"graph TD;A-->B", "graph TD;A-->B"},
		{"  graph TD;A-->B \n", "graph TD;A-->B"},
		{"```mermaid\ngraph TD;A-->B\n```", "graph TD;A-->B"},
		{"```\nflowchart LR\n  a --> b\n```", "flowchart LR\n  a --> b"},
		{"```mermaid\n```", ""},
	}

	for _, tc := range tests {
		if got := cleanMarkup(tc.in); got != tc.want {
			t.Errorf("cleanMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
