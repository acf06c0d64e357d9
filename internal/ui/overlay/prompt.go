package overlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptResult is the submitted text of a PromptOverlay
type PromptResult struct {
	Value string
}

// PromptOverlay asks for a single line of text
type PromptOverlay struct {
	id     string
	title  string
	hint   string
	input  textinput.Model
	err    string
	styles *Styles
}

// NewPromptOverlay creates a single-line prompt. id is echoed back as the
// SelectionMsg key.
func NewPromptOverlay(id, title, placeholder, initial string) *PromptOverlay {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 50
	ti.SetValue(initial)
	ti.Focus()

	return &PromptOverlay{
		id:     id,
		title:  title,
		input:  ti,
		styles: New(),
	}
}

// WithHint sets a line of help text shown under the input
func (p *PromptOverlay) WithHint(hint string) *PromptOverlay {
	p.hint = hint
	return p
}

// Init starts the cursor blink
func (p *PromptOverlay) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (p *PromptOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return p, closeCmd
		case "enter":
			value := strings.TrimSpace(p.input.Value())
			if value == "" {
				p.err = "Enter a value or press Esc"
				return p, nil
			}
			return p, selectCmd(p.id, PromptResult{Value: value})
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.err = ""
	return p, cmd
}

// Value returns the current input
func (p *PromptOverlay) Value() string {
	return p.input.Value()
}

// View renders the prompt
func (p *PromptOverlay) View() string {
	var b strings.Builder
	b.WriteString(p.input.View())
	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(p.styles.Error.Render(p.err))
	}
	if p.hint != "" {
		b.WriteString("\n")
		b.WriteString(p.styles.Footer.Render(p.hint))
	}
	b.WriteString("\n")
	b.WriteString(p.styles.Footer.Render("Enter: Confirm • Esc: Cancel"))
	return b.String()
}

// Title returns the prompt title
func (p *PromptOverlay) Title() string {
	return p.title
}

// Size returns the overlay dimensions
func (p *PromptOverlay) Size() (width, height int) {
	return 60, 7
}
