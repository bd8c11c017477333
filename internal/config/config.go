package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	RenderModeRendered = "rendered"
	RenderModeMarkup   = "markup"
)

type Config struct {
	// Server
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Frontend origin allowed by CORS
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// OpenAI. APIKey may be empty when every caller supplies its own key.
	OpenAI OpenAIConfig

	// Rendering
	KrokiURL      string        `env:"KROKI_URL" envDefault:"https://kroki.io"`
	RenderTimeout time.Duration `env:"RENDER_TIMEOUT" envDefault:"20s"`
	RenderMode    string        `env:"RENDER_MODE" envDefault:"rendered"`

	// Limits
	MaxDescriptionLength int `env:"MAX_DESCRIPTION_LENGTH" envDefault:"5000"`
	RateLimitPerMinute   int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
}

type OpenAIConfig struct {
	APIKey  string        `env:"OPENAI_API_KEY"`
	BaseURL string        `env:"OPENAI_BASE_URL"`
	Timeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"120s"`
	O1Model string        `env:"OPENAI_O1_MODEL" envDefault:"o1-mini"`
	O3Model string        `env:"OPENAI_O3_MODEL" envDefault:"o3-mini"`
	O4Model string        `env:"OPENAI_O4_MODEL" envDefault:"o4-mini"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.RenderMode = strings.ToLower(strings.TrimSpace(c.RenderMode))
	if c.RenderMode != RenderModeRendered && c.RenderMode != RenderModeMarkup {
		return fmt.Errorf("RENDER_MODE must be %q or %q, got %q", RenderModeRendered, RenderModeMarkup, c.RenderMode)
	}
	if c.MaxDescriptionLength <= 0 {
		return fmt.Errorf("MAX_DESCRIPTION_LENGTH must be positive, got %d", c.MaxDescriptionLength)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute)
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("RENDER_TIMEOUT must be positive, got %s", c.RenderTimeout)
	}
	c.KrokiURL = strings.TrimRight(c.KrokiURL, "/")
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
