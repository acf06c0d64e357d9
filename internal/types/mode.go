// Package types contains shared types used across the application.
package types

// Mode represents what the pointer and keyboard currently drive
type Mode int

const (
	ModeNormal Mode = iota
	ModeDrag
	ModeEdit
	ModePrompt
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeDrag:
		return "DRAG"
	case ModeEdit:
		return "EDIT"
	case ModePrompt:
		return "PROMPT"
	default:
		return "UNKNOWN"
	}
}
