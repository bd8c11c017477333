package services

import (
	"fmt"
	"net/http"
)

// ValidationError is returned before any outbound call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type UpstreamTimeoutError struct{ Err error }

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("model request timed out: %v", e.Err)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Err }

// UpstreamUnavailableError covers connection failures and 5xx answers.
type UpstreamUnavailableError struct{ Err error }

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("model service unavailable: %v", e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// UpstreamRejectedError is a 4xx answer from the model service.
type UpstreamRejectedError struct {
	Status  int
	Message string
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("model request rejected (%d): %s", e.Status, e.Message)
}

func (e *UpstreamRejectedError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

type ContentPolicyError struct{ Message string }

func (e *ContentPolicyError) Error() string {
	return fmt.Sprintf("content policy violation: %s", e.Message)
}

type UnexpectedUpstreamError struct{ Err error }

func (e *UnexpectedUpstreamError) Error() string {
	return fmt.Sprintf("unexpected model error: %v", e.Err)
}

func (e *UnexpectedUpstreamError) Unwrap() error { return e.Err }

// EmptyResultError means the model answered but produced no usable markup.
type EmptyResultError struct{ Model string }

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("model %s returned an empty diagram", e.Model)
}

// RenderingError is a failed call to the rendering service. Status is the
// HTTP status it answered with, zero when no answer was received.
type RenderingError struct {
	Timeout bool
	Status  int
	Err     error
}

func (e *RenderingError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("rendering timed out: %v", e.Err)
	case e.Status != 0:
		return fmt.Sprintf("rendering failed with status %d", e.Status)
	default:
		return fmt.Sprintf("rendering failed: %v", e.Err)
	}
}

func (e *RenderingError) Unwrap() error { return e.Err }
