package services

import (
	"context"
	"testing"

	"usecase-backend/internal/logging"
)

func TestDispatcher_RoutesToExactlyOneBackend(t *testing.T) {
	for _, model := range []string{ModelO1, ModelO3, ModelO4} {
		t.Run(model, func(t *testing.T) {
			backends := newStubBackends("graph TD;A-->B")
			d := newTestDispatcher(backends)

			got, err := d.Dispatch(context.Background(), model, "a chatbot for HR", "sk-user")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != "graph TD;A-->B" {
				t.Fatalf("unexpected markup %q", got)
			}

			for id, b := range backends {
				want := 0
				if id == model {
					want = 1
				}
				if b.calls != want {
					t.Errorf("backend %s: expected %d calls, got %d", id, want, b.calls)
				}
			}

			chosen := backends[model]
			if chosen.lastPrompt != UseCasePrompt {
				t.Errorf("expected fixed prompt, got %q", chosen.lastPrompt)
			}
			if chosen.lastInput.Explanation != "a chatbot for HR" {
				t.Errorf("expected description in context, got %q", chosen.lastInput.Explanation)
			}
			if chosen.lastKey != "sk-user" {
				t.Errorf("expected key override to be passed through, got %q", chosen.lastKey)
			}
		})
	}
}

func TestDispatcher_UnknownModelUsesDefault(t *testing.T) {
	for _, model := range []string{"", "gpt-4", "O3 "} {
		backends := newStubBackends("graph TD;A-->B")
		d := newTestDispatcher(backends)

		if _, err := d.Dispatch(context.Background(), model, "x", ""); err != nil {
			t.Fatalf("model %q: unexpected error: %v", model, err)
		}
		if backends[DefaultModel].calls != 1 {
			t.Errorf("model %q: expected default backend called once, got %d", model, backends[DefaultModel].calls)
		}
		if totalCalls(backends) != 1 {
			t.Errorf("model %q: expected exactly one backend call, got %d", model, totalCalls(backends))
		}
	}
}

func TestDispatcher_PropagatesBackendError(t *testing.T) {
	backends := newStubBackends("")
	backends[ModelO3].err = &UpstreamTimeoutError{Err: context.DeadlineExceeded}
	d := newTestDispatcher(backends)

	_, err := d.Dispatch(context.Background(), ModelO3, "x", "")
	if _, ok := err.(*UpstreamTimeoutError); !ok {
		t.Fatalf("expected *UpstreamTimeoutError, got %T (%v)", err, err)
	}
	if backends[ModelO3].calls != 1 {
		t.Fatalf("expected a single attempt, got %d", backends[ModelO3].calls)
	}
}

func TestNewDispatcher_RequiresDefault(t *testing.T) {
	_, err := NewDispatcher(map[string]Backend{ModelO3: &stubBackend{}}, logging.Nop())
	if err == nil {
		t.Fatal("expected error when the default model has no backend")
	}
}

func TestDispatcher_Models(t *testing.T) {
	d := newTestDispatcher(newStubBackends(""))

	infos := d.Models()
	if len(infos) != 3 {
		t.Fatalf("expected 3 models, got %d", len(infos))
	}
	wantIDs := []string{ModelO1, ModelO3, ModelO4}
	for i, info := range infos {
		if info.ID != wantIDs[i] {
			t.Errorf("position %d: expected %s, got %s", i, wantIDs[i], info.ID)
		}
		if info.Default != (info.ID == DefaultModel) {
			t.Errorf("model %s: unexpected default flag %v", info.ID, info.Default)
		}
	}
	if infos[0].Name != "o1-mini" {
		t.Errorf("expected backend name o1-mini, got %q", infos[0].Name)
	}
}
