package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Renderer turns diagram markup into an image.
type Renderer interface {
	Render(ctx context.Context, markup string) ([]byte, error)
}

// KrokiRenderer posts Mermaid source to a Kroki instance and returns SVG.
type KrokiRenderer struct {
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
}

func NewKrokiRenderer(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *KrokiRenderer {
	return &KrokiRenderer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (k *KrokiRenderer) Render(ctx context.Context, markup string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL+"/mermaid/svg", strings.NewReader(markup))
	if err != nil {
		return nil, &RenderingError{Err: fmt.Errorf("failed to build render request: %w", err)}
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Accept", "image/svg+xml")

	start := time.Now()
	resp, err := k.client.Do(req)
	if err != nil {
		k.logger.Warnw("Kroki request failed", "duration", time.Since(start).String(), "error", err)
		return nil, &RenderingError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		k.logger.Warnw("Kroki rendering failed", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return nil, &RenderingError{Status: resp.StatusCode}
	}

	svg, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RenderingError{Timeout: isTimeout(err), Err: fmt.Errorf("failed to read render response: %w", err)}
	}
	if len(svg) == 0 {
		k.logger.Warnw("Kroki returned an empty image")
		return nil, &RenderingError{Err: errors.New("empty render response")}
	}
	k.logger.Debugw("Kroki rendering done", "bytes", len(svg), "duration", time.Since(start).String())
	return svg, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
