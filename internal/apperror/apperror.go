// Package apperror defines the domain error taxonomy shared by all layers.
//
// Services return these errors; the HTTP layer maps them to status codes with
// errors.Is/errors.As. Expected conditions (missing record, bad input, wrong
// owner) are always returned as values — nothing in the domain path panics.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError pairs a sentinel (for errors.Is checks) with a human-readable
// message safe to show to the client.
type AppError struct {
	Err     error  // sentinel category, wrapped
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden indicates the caller is authenticated but lacks rights over the
// target record. HTTP handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized indicates the caller's identity could not be established
// (bad credentials, missing/expired token). HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// DuplicateConnection is returned when a connection record already exists
// for the unordered user pair, in any status.
func DuplicateConnection(user1ID, user2ID string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("connection between %s and %s already exists", user1ID, user2ID),
	}
}

// SelfConnection is returned when a user tries to connect with themselves.
func SelfConnection() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "cannot connect with yourself",
		Field:   "userId",
	}
}
