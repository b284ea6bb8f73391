package model

import (
	"errors"
	"net/http"
)

// Error kinds shared by the engine and its collaborators. Callers wrap them
// with context using fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// Input
	ErrParse           = errors.New("parse error")
	ErrInvalidArgument = errors.New("invalid argument")

	// Lookup
	ErrNotFound = errors.New("not found")

	// Capability
	ErrUnimplemented = errors.New("unimplemented")

	// Collaborators
	ErrPoisoned = errors.New("poisoned")
	ErrUnknown  = errors.New("unknown error")
)

// ErrorCode returns the stable API code for an error chain.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrParse):
		return "PARSE_ERROR"
	case errors.Is(err, ErrInvalidArgument):
		return "INVALID_ARGUMENT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrUnimplemented):
		return "UNIMPLEMENTED"
	case errors.Is(err, ErrPoisoned):
		return "POISONED"
	default:
		return "UNKNOWN"
	}
}

// StatusCode maps an error chain to an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrParse), errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnimplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
