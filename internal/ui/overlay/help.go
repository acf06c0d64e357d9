package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyBinding represents a single keybinding entry
type KeyBinding struct {
	Key         string
	Description string
}

// KeyCategory represents a category of keybindings
type KeyCategory struct {
	Name     string
	Bindings []KeyBinding
}

// HelpOverlay displays keybinding reference
type HelpOverlay struct {
	styles     *Styles
	scroll     int
	maxScroll  int
	viewHeight int
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay() *HelpOverlay {
	return &HelpOverlay{
		styles:     New(),
		scroll:     0,
		viewHeight: 20, // Default height, will be updated based on Size()
	}
}

// Init initializes the overlay
func (h *HelpOverlay) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (h *HelpOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "?":
			return h, func() tea.Msg { return CloseOverlayMsg{} }

		case "j", "down":
			if h.scroll < h.maxScroll {
				h.scroll++
			}
			return h, nil

		case "k", "up":
			if h.scroll > 0 {
				h.scroll--
			}
			return h, nil

		case "g":
			// Jump to top
			h.scroll = 0
			return h, nil

		case "G":
			// Jump to bottom
			h.scroll = h.maxScroll
			return h, nil
		}
	}

	return h, nil
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	categories := h.getCategories()

	// Build full content
	var content strings.Builder
	for i, cat := range categories {
		if i > 0 {
			content.WriteString("\n")
		}

		content.WriteString(h.styles.MenuHeader.Render(cat.Name + ":"))
		content.WriteString("\n")

		// Bindings in this category
		for _, binding := range cat.Bindings {
			keyStyle := h.styles.MenuKey
			descStyle := h.styles.MenuItem

			line := "  " + keyStyle.Render(padRight(binding.Key, 12)) + descStyle.Render(binding.Description)
			content.WriteString(line)
			content.WriteString("\n")
		}
	}

	// Calculate scroll limits
	lines := strings.Split(content.String(), "\n")
	totalLines := len(lines)
	h.maxScroll = max(0, totalLines-h.viewHeight)

	// Apply scroll offset
	start := h.scroll
	end := min(h.scroll+h.viewHeight, totalLines)

	visibleLines := lines[start:end]
	result := strings.Join(visibleLines, "\n")

	// Add scroll indicator if needed
	if h.maxScroll > 0 {
		scrollInfo := h.styles.Footer.Render(
			"[" + h.styles.MenuKey.Render("j/k") + " to scroll, " + h.styles.MenuKey.Render("g/G") + " to jump]",
		)
		result += "\n\n" + scrollInfo
	}

	return result
}

// Title returns the overlay title
func (h *HelpOverlay) Title() string {
	return "Help"
}

// Size returns the overlay dimensions
func (h *HelpOverlay) Size() (width, height int) {
	h.viewHeight = 20 // Content viewing area
	return 56, 24     // Total overlay size including padding and borders
}

// getCategories returns all keybinding categories
func (h *HelpOverlay) getCategories() []KeyCategory {
	return []KeyCategory{
		{
			Name: "Mouse",
			Bindings: []KeyBinding{
				{Key: "click", Description: "Add idea on empty space"},
				{Key: "click", Description: "Toggle selection on an idea"},
				{Key: "click text", Description: "Edit idea text"},
				{Key: "double-click", Description: "Edit idea text"},
				{Key: "drag", Description: "Move idea"},
				{Key: "click ×", Description: "Delete idea"},
			},
		},
		{
			Name: "AI",
			Bindings: []KeyBinding{
				{Key: "e", Description: "Expand a topic into ideas"},
				{Key: "r", Description: "Refine selected ideas"},
				{Key: "s", Description: "Summarize the board"},
				{Key: "t", Description: "Translate the first ideas"},
				{Key: "S", Description: "Show last summary"},
			},
		},
		{
			Name: "Board",
			Bindings: []KeyBinding{
				{Key: "c", Description: "Connect selected ideas in order"},
				{Key: "Esc", Description: "Clear selection"},
				{Key: "X", Description: "Clear board"},
				{Key: "x", Description: "Export board (png/svg/json)"},
			},
		},
		{
			Name: "Other",
			Bindings: []KeyBinding{
				{Key: "?", Description: "Help (this screen)"},
				{Key: "q", Description: "Quit"},
			},
		},
	}
}

func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s + " "
}
