package statusbar

import "github.com/museboard/museboard/internal/types"

// GetHints returns the keybinding hints for the given mode
func GetHints(mode types.Mode) string {
	switch mode {
	case types.ModeNormal:
		return "e: expand  r: refine  s: summarize  t: translate  c: connect  ?: help  q: quit"
	case types.ModeDrag:
		return "Release to drop"
	case types.ModeEdit:
		return "Enter: save  Esc: cancel"
	case types.ModePrompt:
		return "Enter: confirm  Esc: cancel"
	default:
		return ""
	}
}
