package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds all the UI styles
type Styles struct {
	// Canvas
	Canvas       lipgloss.Style
	Node         lipgloss.Style
	NodeSelected lipgloss.Style
	NodeDragging lipgloss.Style
	NodeEditing  lipgloss.Style
	NodeText     lipgloss.Style
	DeleteMark   lipgloss.Style
	Connection   lipgloss.Style
	EmptyHint    lipgloss.Style

	// Status bar
	StatusBar   lipgloss.Style
	StatusMode  lipgloss.Style
	StatusHint  lipgloss.Style
	StatusInfo  lipgloss.Style
	StatusReady lipgloss.Style
	StatusBusy  lipgloss.Style
	StatusError lipgloss.Style

	// Overlays
	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style
	MenuItem     lipgloss.Style
	MenuKey      lipgloss.Style
	Separator    lipgloss.Style

	// Toasts
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
}

// New creates a new Styles instance with Catppuccin Macchiato theme
func New() *Styles {
	return &Styles{
		Canvas: lipgloss.NewStyle().
			Foreground(Surface2),

		Node: lipgloss.NewStyle().
			Foreground(Surface2),

		NodeSelected: lipgloss.NewStyle().
			Foreground(Mauve).
			Bold(true),

		NodeDragging: lipgloss.NewStyle().
			Foreground(Peach).
			Bold(true),

		NodeEditing: lipgloss.NewStyle().
			Foreground(Green).
			Bold(true),

		NodeText: lipgloss.NewStyle().
			Foreground(Text),

		DeleteMark: lipgloss.NewStyle().
			Foreground(Red),

		Connection: lipgloss.NewStyle().
			Foreground(Overlay0),

		EmptyHint: lipgloss.NewStyle().
			Foreground(Overlay1).
			Italic(true),

		StatusBar: lipgloss.NewStyle().
			Background(Surface0).
			Foreground(Subtext0).
			Padding(0, 1),

		StatusMode: lipgloss.NewStyle().
			Background(Blue).
			Foreground(Base).
			Bold(true).
			Padding(0, 1),

		StatusHint: lipgloss.NewStyle().
			Foreground(Overlay1),

		StatusInfo: lipgloss.NewStyle().
			Foreground(Subtext0),

		StatusReady: lipgloss.NewStyle().
			Foreground(Green),

		StatusBusy: lipgloss.NewStyle().
			Foreground(Yellow),

		StatusError: lipgloss.NewStyle().
			Foreground(Red).
			Bold(true),

		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Background(Base).
			Padding(1, 2),

		OverlayTitle: lipgloss.NewStyle().
			Foreground(Text).
			Bold(true).
			MarginBottom(1),

		MenuItem: lipgloss.NewStyle().
			Foreground(Text),

		MenuKey: lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true),

		Separator: lipgloss.NewStyle().
			Foreground(Surface1),

		ToastInfo: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Blue).
			Foreground(Blue).
			Padding(0, 1),

		ToastSuccess: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Foreground(Green).
			Padding(0, 1),

		ToastWarning: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Yellow).
			Foreground(Yellow).
			Padding(0, 1),

		ToastError: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Foreground(Red).
			Padding(0, 1),
	}
}

// ModeBadge returns the status bar badge style for a mode name
func (s *Styles) ModeBadge(mode string) lipgloss.Style {
	color, ok := ModeColors[mode]
	if !ok {
		color = Overlay1
	}
	return s.StatusMode.Background(color)
}
