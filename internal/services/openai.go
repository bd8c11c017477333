package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"go.uber.org/zap"

	"usecase-backend/internal/config"
)

// UseCasePrompt is the instruction every backend receives.
const UseCasePrompt = "You are a helpful assistant that generates Mermaid.js diagrams. " +
	"Given a description of an enterprise generative AI use case, decide the " +
	"best diagram type (use case, sequence, gantt, etc.) and output ONLY the " +
	"Mermaid syntax. Ensure the syntax uses the correct properties for the " +
	"chosen diagram."

// DiagramContext is the structured input handed to a backend with the prompt.
type DiagramContext struct {
	Explanation string
}

// Backend is one diagram-generation provider.
type Backend interface {
	Name() string
	Provider() string
	GenerateDiagram(ctx context.Context, prompt string, input DiagramContext, apiKey string) (string, error)
}

// NewOpenAIClient builds the shared client. SDK retries are disabled: a
// failed call is reported, never repeated.
func NewOpenAIClient(cfg config.OpenAIConfig) *openai.Client {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)
	return &client
}

// NewOpenAIBackends registers the o1, o3 and o4 variants on one client.
func NewOpenAIBackends(client *openai.Client, cfg config.OpenAIConfig, logger *zap.SugaredLogger) map[string]Backend {
	hasKey := cfg.APIKey != ""
	return map[string]Backend{
		ModelO1: NewOpenAIBackend(client, cfg.O1Model, hasKey, logger),
		ModelO3: NewOpenAIBackend(client, cfg.O3Model, hasKey, logger),
		ModelO4: NewOpenAIBackend(client, cfg.O4Model, hasKey, logger),
	}
}

type OpenAIBackend struct {
	client     *openai.Client
	model      openai.ChatModel
	defaultKey bool
	logger     *zap.SugaredLogger
}

func NewOpenAIBackend(client *openai.Client, model string, defaultKey bool, logger *zap.SugaredLogger) *OpenAIBackend {
	return &OpenAIBackend{
		client:     client,
		model:      openai.ChatModel(model),
		defaultKey: defaultKey,
		logger:     logger,
	}
}

func (b *OpenAIBackend) Name() string     { return string(b.model) }
func (b *OpenAIBackend) Provider() string { return "openai" }

// GenerateDiagram sends one Responses API request. apiKey, when set,
// replaces the configured key for this call only.
func (b *OpenAIBackend) GenerateDiagram(ctx context.Context, prompt string, input DiagramContext, apiKey string) (string, error) {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else if !b.defaultKey {
		return "", &UpstreamRejectedError{
			Status:  http.StatusUnauthorized,
			Message: "An OpenAI API key is required",
		}
	}

	params := responses.ResponseNewParams{
		Model:        b.model,
		Instructions: openai.String(prompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(formatUserMessage(input)),
		},
	}

	start := time.Now()
	resp, err := b.client.Responses.New(ctx, params, opts...)
	dur := time.Since(start)
	if err != nil {
		b.logger.Warnw("OpenAI request failed", "model", b.model, "duration", dur.String(), "error", err)
		return "", classifyOpenAIError(err)
	}
	b.logger.Infow("OpenAI response received", "model", b.model, "duration", dur.String(), "status", resp.Status)

	if err := checkResponse(resp); err != nil {
		b.logger.Warnw("OpenAI response unusable", "model", b.model, "error", err)
		return "", err
	}
	return resp.OutputText(), nil
}

// checkResponse rejects successful replies that carry a refusal or were cut
// short. Partial markup is never returned.
func checkResponse(resp *responses.Response) error {
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.AsMessage().Content {
			if content.Type == "refusal" {
				return &ContentPolicyError{Message: strings.TrimSpace(content.Refusal)}
			}
		}
	}

	if resp.Status == "incomplete" {
		reason := string(resp.IncompleteDetails.Reason)
		if reason == "content_filter" {
			return &ContentPolicyError{Message: "response stopped by content filter"}
		}
		if reason == "" {
			reason = "unknown"
		}
		return &UnexpectedUpstreamError{Err: fmt.Errorf("openai: incomplete response (%s)", reason)}
	}
	return nil
}

func formatUserMessage(input DiagramContext) string {
	return "<explanation>\n" + input.Explanation + "\n</explanation>"
}

var contentPolicyMarkers = []string{
	"content_policy_violation",
	"content_filter",
	"content policy",
	"usage policy",
	"safety system",
}

// classifyOpenAIError maps an SDK error to one of the upstream categories.
// Content policy is checked before the status code.
func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if isContentPolicy(apiErr) {
			return &ContentPolicyError{Message: apiErr.Message}
		}

		switch {
		case apiErr.StatusCode == http.StatusRequestTimeout || apiErr.StatusCode == http.StatusGatewayTimeout:
			return &UpstreamTimeoutError{Err: err}
		case apiErr.StatusCode >= 500:
			return &UpstreamUnavailableError{Err: err}
		case apiErr.StatusCode >= 400:
			msg := strings.TrimSpace(apiErr.Message)
			if msg == "" {
				msg = http.StatusText(apiErr.StatusCode)
			}
			return &UpstreamRejectedError{Status: apiErr.StatusCode, Message: msg}
		}
		return &UnexpectedUpstreamError{Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamTimeoutError{Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &UpstreamTimeoutError{Err: err}
		}
		return &UpstreamUnavailableError{Err: err}
	}

	return &UnexpectedUpstreamError{Err: fmt.Errorf("openai: %w", err)}
}

func isContentPolicy(apiErr *openai.Error) bool {
	if apiErr.StatusCode < 400 || apiErr.StatusCode >= 500 {
		return false
	}
	haystack := strings.ToLower(strings.Join([]string{apiErr.Code, apiErr.Type, apiErr.Message, apiErr.Error()}, " "))
	for _, marker := range contentPolicyMarkers {
		if strings.Contains(haystack, marker) {
			return true
		}
	}
	return false
}
