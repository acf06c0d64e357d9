package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrNotFound = errors.New("not found")
	ErrBusy     = errors.New("another operation is in progress")
)

// ValidationError is a caller-preventable precondition failure (empty prompt,
// empty selection, empty board). It is raised before any backend call and
// never changes the operation phase.
type ValidationError struct {
	Op      Operation
	Message string
	Err     error // Optional: e.g. ErrBusy
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: invalid request", e.Op)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BackendError represents any failure from the idea backend
type BackendError struct {
	Op      Operation // Operation: "expand", "refine", etc.
	Message string    // Human-readable context
	Err     error     // Underlying error
}

func (e *BackendError) Error() string {
	if e.Message != "" && e.Err != nil {
		return fmt.Sprintf("backend %s: %s: %v", e.Op, e.Message, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("backend %s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s failed", e.Op)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
