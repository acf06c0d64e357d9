package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/museboard/museboard/internal/ui/canvas"
	"github.com/museboard/museboard/internal/ui/statusbar"
	"github.com/museboard/museboard/internal/ui/toast"
)

// View renders the application
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	bodyHeight := max(m.height-1, 0)

	var body string
	if !m.overlayStack.IsEmpty() {
		body = m.overlayStack.View(m.width, bodyHeight)
	} else {
		body = m.canvas.Render(canvas.Overlay{
			DraggingID: m.controller.DraggingID(),
			EditingID:  m.controller.EditingID(),
			Draft:      m.controller.Draft(),
		})
	}

	// Toasts sit in the bottom-right corner of the body
	if len(m.toasts) > 0 {
		toastView := toast.New(m.styles).Render(m.toasts, m.width)
		body = overlayBottom(body, toastView, m.width, bodyHeight)
	}

	state := m.orchestrator.State()
	sb := statusbar.New(statusbar.Status{
		Mode:     m.Mode(),
		State:    state,
		Ideas:    m.board.Count(),
		Selected: m.board.SelectionCount(),
		Spinner:  m.spinner.View(),
		Offline:  !m.isOnline,
	}, m.width, m.styles)

	return lipgloss.JoinVertical(lipgloss.Left, body, sb.Render())
}

// overlayBottom replaces the last lines of base with top, right-aligned.
// The result keeps exactly height lines.
func overlayBottom(base, top string, width, height int) string {
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	topLines := strings.Split(top, "\n")
	if len(topLines) > height {
		topLines = topLines[len(topLines)-height:]
	}
	start := height - len(topLines)
	for i, tl := range topLines {
		lines[start+i] = lipgloss.PlaceHorizontal(width, lipgloss.Right, tl)
	}
	return strings.Join(lines, "\n")
}
