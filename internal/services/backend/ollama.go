package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/museboard/museboard/internal/config"
	"github.com/museboard/museboard/internal/domain"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker around remote calls
type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// ReadyToTrip trips once MinRequests were seen and the failure ratio
	// reaches FailureThreshold
	FailureThreshold float64
	MinRequests      uint32
}

// BreakerSettingsFromConfig converts the config section
func BreakerSettingsFromConfig(c config.BreakerConfig) BreakerSettings {
	return BreakerSettings{
		MaxRequests:      c.MaxRequests,
		Interval:         time.Duration(c.IntervalSec) * time.Second,
		Timeout:          time.Duration(c.TimeoutSec) * time.Second,
		FailureThreshold: c.FailureThreshold,
		MinRequests:      c.MinRequests,
	}
}

// OllamaOptions configures the Ollama provider
type OllamaOptions struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Breaker    BreakerSettings
	HTTPClient *http.Client // Optional
}

// Ollama talks to an Ollama-compatible /api/generate endpoint
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// NewOllama creates the provider
func NewOllama(opts OllamaOptions, logger *slog.Logger) *Ollama {
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	settings := opts.Breaker
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ollama",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Ollama{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		client:  client,
		cb:      cb,
		logger:  logger,
	}
}

func (o *Ollama) generate(ctx context.Context, op domain.Operation, prompt string) (string, error) {
	o.logger.Debug("ollama generate", "op", op, "model", o.model)

	out, err := o.cb.Execute(func() (interface{}, error) {
		return o.post(ctx, prompt)
	})
	if err != nil {
		return "", &domain.BackendError{Op: op, Err: err}
	}

	text := strings.TrimSpace(out.(string))
	if text == "" {
		return "", &domain.BackendError{Op: op, Message: "empty response"}
	}
	return text, nil
}

func (o *Ollama) post(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: o.model, Prompt: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 300 {
			return "", fmt.Errorf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.StatusCode >= 300 {
		if parsed.Error != "" {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, parsed.Error)
		}
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%s", parsed.Error)
	}
	return parsed.Response, nil
}

// Expand asks for seven ideas and splits the answer into lines
func (o *Ollama) Expand(ctx context.Context, prompt string) ([]string, error) {
	text, err := o.generate(ctx, domain.OpExpand,
		fmt.Sprintf("Generate 7 creative brainstorming ideas about: %s", prompt))
	if err != nil {
		return nil, err
	}
	ideas := ParseIdeaList(text)
	if len(ideas) == 0 {
		return nil, &domain.BackendError{Op: domain.OpExpand, Message: "no ideas in response"}
	}
	return ideas, nil
}

// Refine rewrites a single idea
func (o *Ollama) Refine(ctx context.Context, text string) (string, error) {
	return o.generate(ctx, domain.OpRefine,
		fmt.Sprintf("Refine this idea for clarity and creativity: %s", text))
}

// Summarize condenses all ideas into a plan
func (o *Ollama) Summarize(ctx context.Context, texts []string) (string, error) {
	return o.generate(ctx, domain.OpSummarize,
		fmt.Sprintf("Summarize these brainstorming ideas into a concise, actionable plan:\n%s", strings.Join(texts, "\n")))
}

// Translate translates a single idea
func (o *Ollama) Translate(ctx context.Context, text, language string) (string, error) {
	return o.generate(ctx, domain.OpTranslate,
		fmt.Sprintf("Translate the following text into %s. Reply with the translation only:\n%s", language, text))
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)]|#+)\s*`)

// ParseIdeaList splits a model answer into idea lines, dropping list
// markers, markdown emphasis and heading-like lead-ins ("Here are...:").
func ParseIdeaList(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		line = strings.Trim(line, "*_ ")
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		out = append(out, line)
	}
	return out
}
