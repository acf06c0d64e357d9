package backend

import (
	"context"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// HealthChecker tracks whether the remote provider is reachable
type HealthChecker struct {
	mu        sync.RWMutex
	isOnline  bool
	lastCheck time.Time
	url       string
	client    *http.Client
}

// HealthMsg is sent after each reachability check
type HealthMsg struct {
	Online bool
}

// NewHealthChecker creates a checker probing baseURL. An empty baseURL
// (offline providers) is always reported online.
func NewHealthChecker(baseURL string) *HealthChecker {
	url := ""
	if baseURL != "" {
		url = baseURL + "/api/tags"
	}
	return &HealthChecker{
		isOnline: true, // Optimistically assume online
		url:      url,
		client: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
	}
}

// HealthCheckerFor returns the checker matching a provider
func HealthCheckerFor(provider, baseURL string) *HealthChecker {
	if provider == ProviderOllama {
		return NewHealthChecker(baseURL)
	}
	return NewHealthChecker("")
}

// Check probes the provider and caches the result
func (h *HealthChecker) Check(ctx context.Context) bool {
	if h.url == "" {
		h.setOnline(true)
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		h.setOnline(false)
		return false
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.setOnline(false)
		return false
	}
	defer resp.Body.Close()

	online := resp.StatusCode >= 200 && resp.StatusCode < 400
	h.setOnline(online)
	return online
}

// IsOnline returns the cached status
func (h *HealthChecker) IsOnline() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.isOnline
}

// LastCheck returns the time of the last check
func (h *HealthChecker) LastCheck() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastCheck
}

func (h *HealthChecker) setOnline(online bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.isOnline = online
	h.lastCheck = time.Now()
}

// CheckCmd returns a tea.Cmd that performs a one-time check
func (h *HealthChecker) CheckCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return HealthMsg{Online: h.Check(ctx)}
	}
}

// PollCmd schedules the next check after interval
func (h *HealthChecker) PollCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return HealthMsg{Online: h.Check(ctx)}
	})
}
