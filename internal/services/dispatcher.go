package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"usecase-backend/internal/models"
)

const (
	ModelO1 = "o1"
	ModelO3 = "o3"
	ModelO4 = "o4"

	DefaultModel = ModelO1
)

// IsKnownModel reports whether id names one of the backend variants.
func IsKnownModel(id string) bool {
	switch id {
	case ModelO1, ModelO3, ModelO4:
		return true
	}
	return false
}

// Dispatcher routes a request to exactly one backend variant.
type Dispatcher struct {
	backends map[string]Backend
	logger   *zap.SugaredLogger
}

func NewDispatcher(backends map[string]Backend, logger *zap.SugaredLogger) (*Dispatcher, error) {
	if _, ok := backends[DefaultModel]; !ok {
		return nil, fmt.Errorf("no backend registered for default model %q", DefaultModel)
	}
	return &Dispatcher{backends: backends, logger: logger}, nil
}

// Resolve returns the registered id for model, falling back to the default.
func (d *Dispatcher) Resolve(model string) string {
	if _, ok := d.backends[model]; ok {
		return model
	}
	return DefaultModel
}

// Dispatch makes one backend call with the fixed prompt. No retries.
func (d *Dispatcher) Dispatch(ctx context.Context, model, description, apiKey string) (string, error) {
	id := d.Resolve(model)
	if id != model {
		d.logger.Warnw("Unknown model, using default", "requested", model, "model", id)
	}
	backend := d.backends[id]

	d.logger.Debugw("Dispatching diagram request", "model", id, "backend", backend.Name())
	return backend.GenerateDiagram(ctx, UseCasePrompt, DiagramContext{Explanation: description}, apiKey)
}

// Models lists the registered variants ordered by id.
func (d *Dispatcher) Models() []models.ModelInfo {
	infos := make([]models.ModelInfo, 0, len(d.backends))
	for id, b := range d.backends {
		infos = append(infos, models.ModelInfo{
			ID:       id,
			Name:     b.Name(),
			Provider: b.Provider(),
			Default:  id == DefaultModel,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
