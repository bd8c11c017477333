package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"usecase-backend/internal/models"
	"usecase-backend/internal/services"
)

const (
	contentPolicyDetail = "The description was rejected by the model provider's content policy. Please rephrase it and try again."
	unexpectedDetail    = "An unexpected error occurred while generating the diagram."
	emptyResultDetail   = "The model returned an empty diagram. Please try again or rephrase the description."
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(detail string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Detail:    detail,
		RequestID: r.Header.Get("X-Request-ID"),
	}
}

// handleServiceError translates a pipeline failure into a status and detail.
// Content policy is matched before rejections; unexpected detail is only logged.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.SugaredLogger) {
	status, detail := translateError(err)
	if status >= http.StatusInternalServerError {
		logger.Errorw("Diagram generation failed",
			"status", status,
			"error", err,
			"request_id", r.Header.Get("X-Request-ID"),
		)
	} else {
		logger.Infow("Diagram request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResp(detail, r))
}

func translateError(err error) (int, string) {
	var (
		validation    *services.ValidationError
		contentPolicy *services.ContentPolicyError
		rejected      *services.UpstreamRejectedError
		timeout       *services.UpstreamTimeoutError
		unavailable   *services.UpstreamUnavailableError
		empty         *services.EmptyResultError
		rendering     *services.RenderingError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, validation.Message
	case errors.As(err, &contentPolicy):
		return http.StatusBadRequest, contentPolicyDetail
	case errors.As(err, &rejected):
		if rejected.RateLimited() {
			return http.StatusTooManyRequests, rejected.Message
		}
		return http.StatusUnprocessableEntity, rejected.Message
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout, timeout.Error()
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable, "The model service is currently unavailable. Please try again later."
	case errors.As(err, &empty):
		return http.StatusInternalServerError, emptyResultDetail
	case errors.As(err, &rendering):
		if rendering.Timeout {
			return http.StatusGatewayTimeout, "Diagram rendering timed out."
		}
		return http.StatusBadGateway, "Diagram rendering failed."
	default:
		return http.StatusInternalServerError, unexpectedDetail
	}
}
