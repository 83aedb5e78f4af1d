package model

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repositories and use cases.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrLoanNotFound           = errors.New("loan not found")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
)

// InvalidInputError reports a value that violates a precondition. Field names
// the offending input using its wire name, e.g. "term_months".
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// IsInvalidInput reports whether err wraps an *InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
