package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"usecase-backend/internal/models"
	"usecase-backend/internal/services"
)

type diagramGenerator interface {
	Generate(ctx context.Context, req models.UseCaseRequest) (*services.Diagram, error)
}

type modelLister interface {
	Models() []models.ModelInfo
}

type UseCaseHandler struct {
	generator    diagramGenerator
	models       modelLister
	maxBodyBytes int64
	logger       *zap.SugaredLogger
}

// BodyLimit is the largest POST /usecase body accepted for a description
// bound of maxDescriptionLength runes. It leaves room for JSON escapes of
// every rune plus the other fields.
func BodyLimit(maxDescriptionLength int) int64 {
	return int64(maxDescriptionLength)*16 + 4096
}

func NewUseCaseHandler(generator diagramGenerator, lister modelLister, maxBodyBytes int64, logger *zap.SugaredLogger) *UseCaseHandler {
	return &UseCaseHandler{
		generator:    generator,
		models:       lister,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Generate handles POST /usecase.
func (h *UseCaseHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req models.UseCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("Request body too large", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", r))
		return
	}

	diagram, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}

	resp := models.UseCaseResponse{Mermaid: diagram.Markup}
	if diagram.Image != nil {
		resp.SVG = base64.StdEncoding.EncodeToString(diagram.Image)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Models handles GET /usecase/models.
func (h *UseCaseHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ModelsResponse{Models: h.models.Models()})
}
