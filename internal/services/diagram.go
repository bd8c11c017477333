package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"usecase-backend/internal/models"
)

// Diagram is the result of one generation. Image is nil unless rendered.
type Diagram struct {
	Model  string
	Markup string
	Image  []byte
}

// DiagramService runs validate -> dispatch -> (render) for one request.
type DiagramService struct {
	validator  *Validator
	dispatcher *Dispatcher
	renderer   Renderer
	render     bool
	logger     *zap.SugaredLogger
}

// NewDiagramService wires the pipeline. renderer may be nil when render is false.
func NewDiagramService(validator *Validator, dispatcher *Dispatcher, renderer Renderer, render bool, logger *zap.SugaredLogger) *DiagramService {
	return &DiagramService{
		validator:  validator,
		dispatcher: dispatcher,
		renderer:   renderer,
		render:     render && renderer != nil,
		logger:     logger,
	}
}

func (s *DiagramService) Renders() bool { return s.render }

func (s *DiagramService) Generate(ctx context.Context, raw models.UseCaseRequest) (*Diagram, error) {
	req, err := s.validator.Validate(raw)
	if err != nil {
		return nil, err
	}

	text, err := s.dispatcher.Dispatch(ctx, req.Model, req.Description, req.APIKey)
	if err != nil {
		return nil, err
	}

	markup := cleanMarkup(text)
	if markup == "" {
		return nil, &EmptyResultError{Model: req.Model}
	}

	diagram := &Diagram{Model: req.Model, Markup: markup}
	if !s.render {
		return diagram, nil
	}

	image, err := s.renderer.Render(ctx, markup)
	if err != nil {
		return nil, err
	}
	diagram.Image = image

	s.logger.Infow("Diagram generated", "model", req.Model, "markup_bytes", len(markup), "image_bytes", len(image))
	return diagram, nil
}

// cleanMarkup strips a surrounding Markdown code fence, if any.
func cleanMarkup(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```mermaid")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
