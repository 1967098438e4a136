// Package apperr defines the sentinel errors shared by the app layers and
// mapped to HTTP statuses at the transport boundary.
package apperr

import "errors"

var (
	// ErrInvalidInput is returned for malformed or missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied is returned when the question forbids the action
	// or the caller lacks a valid session identity.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicateOption is returned on a case-insensitive custom-answer
	// collision.
	ErrDuplicateOption = errors.New("option already exists")

	// ErrInvalidOption is returned when a submitted option text matches no
	// option of the question.
	ErrInvalidOption = errors.New("invalid option")

	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the session token is missing or
	// unknown.
	ErrUnauthorized = errors.New("unauthorized")
)
