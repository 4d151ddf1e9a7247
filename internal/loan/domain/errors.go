package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("loan application not found")
	ErrStateConflict = errors.New("loan application state conflict")
	ErrForbidden     = errors.New("actor role lacks permission")
	ErrUnauthorized  = errors.New("authentication required")
)

// ValidationError reports a malformed or out-of-range input field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}
