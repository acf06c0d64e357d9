// Package backend provides idea-generation providers.
//
// The orchestrator only depends on the IdeaBackend interface; providers are
// chosen by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/museboard/museboard/internal/config"
)

// IdeaBackend generates and transforms idea text. Every call may fail.
type IdeaBackend interface {
	Expand(ctx context.Context, prompt string) ([]string, error)
	Refine(ctx context.Context, text string) (string, error)
	Summarize(ctx context.Context, texts []string) (string, error)
	Translate(ctx context.Context, text, language string) (string, error)
}

// Provider names accepted in configuration
const (
	ProviderMock   = "mock"
	ProviderOllama = "ollama"
)

// New builds the backend selected by cfg
func New(cfg config.BackendConfig, logger *slog.Logger) (IdeaBackend, error) {
	switch cfg.Provider {
	case ProviderMock, "":
		return NewMock(time.Duration(cfg.MockLatencyMs)*time.Millisecond, logger), nil
	case ProviderOllama:
		return NewOllama(OllamaOptions{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
			Breaker: BreakerSettingsFromConfig(cfg.Breaker),
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown backend provider %q", cfg.Provider)
	}
}
