package overlay

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// SummaryCopiedMsg reports the outcome of copying the summary
type SummaryCopiedMsg struct {
	Err error
}

// SummaryOverlay shows the generated summary as rendered markdown
type SummaryOverlay struct {
	text     string
	viewport viewport.Model
	copyFn   func(string) error
	styles   *Styles
}

const (
	summaryWidth  = 70
	summaryHeight = 16
)

// NewSummaryOverlay renders text with glamour. If rendering fails the raw text
// is shown instead.
func NewSummaryOverlay(text string) *SummaryOverlay {
	vp := viewport.New(summaryWidth-6, summaryHeight)
	vp.SetContent(renderMarkdown(text, summaryWidth-8))

	return &SummaryOverlay{
		text:     text,
		viewport: vp,
		copyFn:   clipboard.WriteAll,
		styles:   New(),
	}
}

// WithCopier replaces the clipboard writer
func (s *SummaryOverlay) WithCopier(fn func(string) error) *SummaryOverlay {
	s.copyFn = fn
	return s
}

func renderMarkdown(text string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

// Init initializes the overlay
func (s *SummaryOverlay) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (s *SummaryOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "q", "enter":
			return s, closeCmd
		case "c", "y":
			text, copyFn := s.text, s.copyFn
			return s, func() tea.Msg {
				return SummaryCopiedMsg{Err: copyFn(text)}
			}
		}
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

// View renders the summary
func (s *SummaryOverlay) View() string {
	return s.viewport.View() + "\n" +
		s.styles.Footer.Render("j/k: Scroll • c: Copy • Esc: Close")
}

// Title returns the overlay title
func (s *SummaryOverlay) Title() string {
	return "Summary"
}

// Size returns the overlay dimensions
func (s *SummaryOverlay) Size() (width, height int) {
	return summaryWidth, summaryHeight + 6
}
