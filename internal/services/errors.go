// internal/services/errors.go
package services

import (
	"errors"
	"strings"

	"github.com/bangazon/bangazon-backend/internal/utils"
)

var (
	// ErrNotFound covers both missing records and records owned by someone else.
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("record was modified concurrently")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidImage       = errors.New("invalid image file")
	ErrImageTooLarge      = errors.New("image too large")
)

// ValidationError is a request that is well formed but breaks a business rule
// that only the store can check, such as an unknown product type.
type ValidationError struct {
	Fields []utils.ValidationError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func newValidationError(field, tag, message string) *ValidationError {
	return &ValidationError{Fields: []utils.ValidationError{{
		Field:   field,
		Tag:     tag,
		Message: message,
	}}}
}
