package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrUnreachable  = errors.New("unreachable")
	ErrMalformed    = errors.New("malformed entity")
	ErrValidation   = errors.New("validation error")
	ErrUnknown      = errors.New("unknown error")
)

// AppError carries a sentinel kind plus the context the UI layer needs:
// a human-readable message, the HTTP status when one was received, and an
// optional field name for validation failures.
type AppError struct {
	Err     error  // sentinel kind, matched with errors.Is
	Message string // Human-readable error message
	Status  int    // HTTP status from the server, 0 when none was received
	Field   string // Optional: field causing the error
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
		Status:  http.StatusNotFound,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unreachable wraps a transport failure: no HTTP response was received at
// all. Distinct from every status-derived kind so callers can show a
// connectivity message instead of a server error.
func Unreachable(err error) *AppError {
	return &AppError{
		Err:     ErrUnreachable,
		Message: fmt.Sprintf("server unreachable: %v", err),
	}
}

// Malformed reports a document that violates the normalizer's
// preconditions (e.g. a wishlist missing both id and _id).
func Malformed(entity, reason string) *AppError {
	return &AppError{
		Err:     ErrMalformed,
		Message: fmt.Sprintf("malformed %s: %s", entity, reason),
	}
}

// FromStatus maps a non-2xx HTTP response to the taxonomy. message is the
// server-supplied message body field; when empty, a generic per-kind
// message is substituted so callers always have something displayable.
func FromStatus(status int, message string) *AppError {
	var kind error
	switch status {
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
		if message == "" {
			message = "authentication required"
		}
	case http.StatusForbidden:
		kind = ErrForbidden
		if message == "" {
			message = "you do not have permission to do that"
		}
	case http.StatusNotFound:
		kind = ErrNotFound
		if message == "" {
			message = "resource not found"
		}
	default:
		kind = ErrUnknown
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", status)
		}
	}
	return &AppError{
		Err:     kind,
		Message: message,
		Status:  status,
	}
}
