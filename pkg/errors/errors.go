package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors. They form the error taxonomy of the indexing
// pipeline: storage reads, index engine calls, and configuration handling
// each normalize their failures to one of these so callers can branch on
// errors.Is without knowing the underlying client.
var (
	// ErrNotFound means the requested entity does not exist in the source
	// of truth. For resync jobs this is not a failure: the document is
	// removed from the index instead.
	ErrNotFound = errors.New("resource not found")

	// ErrDataUnavailable means the source entity or one of its associations
	// could not be read (storage down, query failed). Synthesis aborts
	// without emitting a partial document; the job layer retries.
	ErrDataUnavailable = errors.New("source data unavailable")

	// ErrIndexUnavailable is a transient engine or network failure on an
	// upsert or query. Retryable with backoff.
	ErrIndexUnavailable = errors.New("search index unavailable")

	// ErrIndexRejected means the index refused a document or configuration
	// (mapping conflict, field-count limit). Not retryable; requires an
	// operator to stage a configuration patch.
	ErrIndexRejected = errors.New("search index rejected request")

	// ErrConfigInconsistent means the active locale set observed at
	// synthesis time differs from the one the schema was built with.
	// This is a programming error, never retried.
	ErrConfigInconsistent = errors.New("index schema and locale configuration diverged")

	// ErrInvalidInput covers malformed caller input (bad patch, bad query).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal is the catch-all for unexpected failures.
	ErrInternal = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// DataUnavailable wraps a storage read failure as a 503 error.
func DataUnavailable(err error) *AppError {
	return &AppError{
		Code:    "DATA_UNAVAILABLE",
		Message: "catalog storage could not be read",
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrDataUnavailable, err),
	}
}

// IndexUnavailable wraps a transient index engine failure as a 503 error.
func IndexUnavailable(err error) *AppError {
	return &AppError{
		Code:    "INDEX_UNAVAILABLE",
		Message: "search index is unreachable",
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrIndexUnavailable, err),
	}
}

// IndexRejected wraps a non-retryable index engine rejection as a 422 error.
func IndexRejected(reason string) *AppError {
	return &AppError{
		Code:    "INDEX_REJECTED",
		Message: reason,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrIndexRejected,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrDataUnavailable), errors.Is(err, ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
