package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"usecase-backend/internal/models"
)

type Validator struct {
	maxLength int
}

func NewValidator(maxLength int) *Validator {
	return &Validator{maxLength: maxLength}
}

// Validate bounds the description (in runes) and picks the model. A
// missing or unrecognized model falls back to the default silently.
func (v *Validator) Validate(req models.UseCaseRequest) (models.UseCaseRequest, error) {
	if n := utf8.RuneCountInString(req.Description); n > v.maxLength {
		return models.UseCaseRequest{}, &ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("Description must be at most %d characters (got %d)", v.maxLength, n),
		}
	}

	model := strings.ToLower(strings.TrimSpace(req.Model))
	if !IsKnownModel(model) {
		model = DefaultModel
	}

	return models.UseCaseRequest{
		Description: req.Description,
		Model:       model,
		APIKey:      strings.TrimSpace(req.APIKey),
	}, nil
}
