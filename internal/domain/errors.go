package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidProfile is the sentinel all profile validation failures wrap;
// callers can branch on it with errors.Is without inspecting messages.
var ErrInvalidProfile = errors.New("invalid financial profile")

// ValidationError rejects a malformed or out-of-range profile field. It
// aborts the calculation entirely: no partial result accompanies it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid financial profile: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidProfile }

// NewValidationError builds a field-scoped validation error.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
