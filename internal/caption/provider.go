package caption

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Request is a single completion request sent to a language model
type Request struct {
	Model       string
	Temperature float64
	Prompt      string
}

// Provider completes prompts with a language model
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config selects and configures the caption provider.
// An empty Provider disables captioning.
type Config struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// NewProvider builds the configured provider. It returns nil when captioning is disabled.
func NewProvider(cfg Config) (Provider, error) {
	httpClient := &http.Client{Timeout: 60 * time.Second}

	switch strings.ToLower(cfg.Provider) {
	case "":
		return nil, nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini caption provider requires an api key")
		}
		return NewGemini(cfg.APIKey), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai caption provider requires an api key")
		}
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, httpClient), nil
	case "ollama":
		return NewOllama(cfg.BaseURL, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown caption provider: %s", cfg.Provider)
	}
}
