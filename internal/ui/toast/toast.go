package toast

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/museboard/museboard/internal/types"
	"github.com/museboard/museboard/internal/ui/styles"
)

// MaxVisible caps how many toasts are stacked at once
const MaxVisible = 3

// ToastRenderer handles rendering of toast notifications
type ToastRenderer struct {
	styles *styles.Styles
}

// New creates a new ToastRenderer with the given styles
func New(styles *styles.Styles) *ToastRenderer {
	return &ToastRenderer{
		styles: styles,
	}
}

// Prune drops expired toasts, keeping the newest MaxVisible
func Prune(toasts []types.Toast, now time.Time) []types.Toast {
	live := toasts[:0:0]
	for _, t := range toasts {
		if !t.Expired(now) {
			live = append(live, t)
		}
	}
	if len(live) > MaxVisible {
		live = live[len(live)-MaxVisible:]
	}
	return live
}

// Render stacks toasts right-aligned, newest last.
// Returns empty string if no toasts to display.
func (r *ToastRenderer) Render(toasts []types.Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}

	toastWidth := min(max(width/3, 20), 48)

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, r.styleForLevel(t.Level).Width(toastWidth).Render(t.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func (r *ToastRenderer) styleForLevel(level types.ToastLevel) lipgloss.Style {
	switch level {
	case types.ToastSuccess:
		return r.styles.ToastSuccess
	case types.ToastWarning:
		return r.styles.ToastWarning
	case types.ToastError:
		return r.styles.ToastError
	default:
		return r.styles.ToastInfo
	}
}
