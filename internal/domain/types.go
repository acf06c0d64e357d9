// Package domain contains core business types for the MuseBoard application.
package domain

// Phase represents the orchestrator's current operation status
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Operation names a backend-driven board operation
type Operation string

const (
	OpExpand    Operation = "expand"
	OpRefine    Operation = "refine"
	OpSummarize Operation = "summarize"
	OpTranslate Operation = "translate"
)

// OperationState is the orchestrator's status as seen by the presentation layer.
// At most one phase is active; LastError is empty unless the last operation failed.
type OperationState struct {
	Phase     Phase
	Operation Operation // Operation in flight, or the one that last ran
	LastError string
}

// IsLoading returns true while a backend call is outstanding
func (s OperationState) IsLoading() bool {
	return s.Phase == PhaseLoading
}
