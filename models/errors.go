package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation means a required field is missing or has the wrong type.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidURL means the destination is not an absolute URL after normalization.
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrNotFound means no record exists for the requested id.
	ErrNotFound = errors.New("link not found")
)

// validationError carries a client-facing message and matches ErrValidation.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

// Validationf returns an error that satisfies errors.Is(err, ErrValidation).
func Validationf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}
