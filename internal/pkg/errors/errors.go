package errors

import "errors"

// Common application errors shared across services and handlers.
var (
	// ErrNotFound is returned when a record or resource does not exist,
	// or must look like it does not exist for the caller (hidden tests).
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for authentication failures (missing or invalid token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller lacks rights for an action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for malformed or inconsistent input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned for state conflicts, e.g. submitting an
	// attempt that is already completed.
	ErrConflict = errors.New("resource state conflict")
)
