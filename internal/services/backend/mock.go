package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// mockIdeas is the fixed expansion returned by the offline provider
var mockIdeas = []string{
	"Core Concept",
	"Implementation Strategy",
	"Target Audience",
	"Success Metrics",
	"Risk Management",
	"Resource Requirements",
	"Timeline Planning",
}

var languageCodes = map[string]string{
	"spanish": "es",
	"french":  "fr",
	"hindi":   "hi",
	"german":  "de",
	"italian": "it",
}

// Mock is an offline provider with canned answers. It is the default so the
// board works without any model installed.
type Mock struct {
	latency time.Duration
	logger  *slog.Logger
}

// NewMock creates a mock provider that waits latency before answering
func NewMock(latency time.Duration, logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mock{latency: latency, logger: logger}
}

func (m *Mock) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Expand returns the seven fixed brainstorming headings
func (m *Mock) Expand(ctx context.Context, prompt string) ([]string, error) {
	m.logger.Debug("mock expand", "prompt", prompt)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]string, len(mockIdeas))
	copy(out, mockIdeas)
	return out, nil
}

// Refine annotates the text
func (m *Mock) Refine(ctx context.Context, text string) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	return text + " (refined for clarity and impact)", nil
}

// Summarize joins the texts
func (m *Mock) Summarize(ctx context.Context, texts []string) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	return "Summary: " + strings.Join(texts, ", "), nil
}

// Translate tags the text with the language code
func (m *Mock) Translate(ctx context.Context, text, language string) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	code, ok := languageCodes[strings.ToLower(language)]
	if !ok {
		code = strings.ToLower(language)
	}
	return fmt.Sprintf("[%s] %s", code, text), nil
}
