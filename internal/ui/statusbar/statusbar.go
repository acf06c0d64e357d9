package statusbar

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/museboard/museboard/internal/domain"
	"github.com/museboard/museboard/internal/types"
	"github.com/museboard/museboard/internal/ui/styles"
)

// Status is everything the status bar reports
type Status struct {
	Mode     types.Mode
	State    domain.OperationState
	Ideas    int
	Selected int
	Spinner  string // Current spinner frame, shown while loading
	Offline  bool   // Remote provider unreachable
}

// StatusBar represents the status bar at the bottom of the TUI
type StatusBar struct {
	status Status
	width  int
	styles *styles.Styles
}

// New creates a new StatusBar with the given status, width, and styles
func New(status Status, width int, styles *styles.Styles) StatusBar {
	return StatusBar{
		status: status,
		width:  width,
		styles: styles,
	}
}

// PhaseText returns the human readable operation status
func PhaseText(state domain.OperationState) string {
	switch state.Phase {
	case domain.PhaseLoading:
		return "AI Processing..."
	case domain.PhaseError:
		if state.LastError != "" {
			return "Error: " + state.LastError
		}
		return "Error"
	default:
		return "AI Ready"
	}
}

// Counts returns the idea and selection summary
func Counts(ideas, selected int) string {
	return fmt.Sprintf("%d ideas • %d selected", ideas, selected)
}

// Render renders the status bar as a string
func (sb StatusBar) Render() string {
	st := sb.status
	modeBadge := sb.styles.ModeBadge(st.Mode.String()).Render(st.Mode.String())
	sep := sb.styles.StatusHint.Render(" │ ")

	phase := PhaseText(st.State)
	phaseStyle := sb.styles.StatusReady
	switch st.State.Phase {
	case domain.PhaseLoading:
		phaseStyle = sb.styles.StatusBusy
		if st.Spinner != "" {
			phase = st.Spinner + " " + phase
		}
	case domain.PhaseError:
		phaseStyle = sb.styles.StatusError
	}
	if st.Offline && st.State.Phase != domain.PhaseLoading {
		phase += " (offline)"
		phaseStyle = sb.styles.StatusError
	}

	parts := []string{
		modeBadge,
		sep,
		phaseStyle.Render(phase),
		sep,
		sb.styles.StatusInfo.Render(Counts(st.Ideas, st.Selected)),
	}
	if hints := GetHints(st.Mode); hints != "" {
		parts = append(parts, sep, sb.styles.StatusHint.Render(hints))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Left, parts...)
	return sb.styles.StatusBar.Width(sb.width).MaxHeight(1).Render(content)
}
