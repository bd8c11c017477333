package models

// UseCaseRequest is the body of POST /usecase.
type UseCaseRequest struct {
	Description string `json:"description"`
	Model       string `json:"model"`
	APIKey      string `json:"api_key,omitempty"`
}

// UseCaseResponse carries the generated markup and, in rendered mode, the
// base64-encoded SVG.
type UseCaseResponse struct {
	SVG     string `json:"svg,omitempty"`
	Mermaid string `json:"mermaid"`
}

// ModelInfo is exposed via GET /usecase/models.
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Default  bool   `json:"default"`
}

type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// API Error response
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}
