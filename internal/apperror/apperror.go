// Package apperror defines the domain error types used across the application.
//
// The whole messaging domain needs exactly two user-visible error kinds:
//
//   - ErrInput:  malformed or semantically invalid arguments — bad email shape,
//     out-of-range lengths, unknown channel/dm/user/message ids, duplicate
//     operations (already a member, already reacted). Handlers map it to 400.
//   - ErrAccess: an unresolvable token, or a resolved caller who lacks the
//     membership/ownership permission the operation requires. Maps to 403.
//
// Anything else that escapes the service layer is an unexpected persistence
// failure and surfaces as a generic 500 — never retried, never detailed to
// the client.
//
// WHY SENTINELS PLUS A STRUCT?
// The sentinel errors (ErrInput, ErrAccess) are what callers branch on with
// errors.Is(). The AppError struct carries the human-readable message and the
// offending field. Both travel together because AppError implements Unwrap(),
// so errors.Is(err, ErrInput) walks through any fmt.Errorf("%w") wrapping the
// service layers add on top.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks malformed or semantically invalid arguments (HTTP 400).
	ErrInput = errors.New("invalid input")
	// ErrAccess marks a missing or insufficient permission (HTTP 403).
	ErrAccess = errors.New("access denied")
)

// AppError is a domain error with a human-readable message.
type AppError struct {
	Err     error  // ErrInput or ErrAccess
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Input returns an AppError for a semantically invalid argument.
func Input(field, message string) *AppError {
	return &AppError{
		Err:     ErrInput,
		Message: message,
		Field:   field,
	}
}

// Inputf is Input with fmt.Sprintf formatting and no field name.
func Inputf(format string, args ...any) *AppError {
	return &AppError{
		Err:     ErrInput,
		Message: fmt.Sprintf(format, args...),
	}
}

// Access returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Access(message string) *AppError {
	return &AppError{
		Err:     ErrAccess,
		Message: message,
	}
}

// NotFound returns an Input error for an unknown entity id.
// Unknown ids are invalid arguments in this domain (400, not 404): the id
// space is dense and process-local, so an unknown id is a caller mistake.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrInput,
		Message: fmt.Sprintf("%s %d does not exist", resource, id),
	}
}
