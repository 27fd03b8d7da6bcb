package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestSentinelMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"index rejected", ErrIndexRejected, http.StatusUnprocessableEntity},
		{"data unavailable", ErrDataUnavailable, http.StatusServiceUnavailable},
		{"index unavailable", ErrIndexUnavailable, http.StatusServiceUnavailable},
		{"config inconsistent is internal", ErrConfigInconsistent, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("load product: %w", ErrDataUnavailable), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := IndexUnavailable(cause)

	if !errors.Is(appErr, ErrIndexUnavailable) {
		t.Error("IndexUnavailable should wrap ErrIndexUnavailable")
	}
	if !errors.Is(appErr, cause) {
		t.Error("IndexUnavailable should preserve the cause")
	}
	if HTTPStatus(appErr) != http.StatusServiceUnavailable {
		t.Errorf("HTTPStatus = %d, want 503", HTTPStatus(appErr))
	}
}

func TestAppError_Error(t *testing.T) {
	err := NotFound("product", "p-1")
	want := "NOT_FOUND: product with id p-1 not found: resource not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIndexRejected_NotRetryableStatus(t *testing.T) {
	err := IndexRejected("Limit of total fields [1000] has been exceeded")
	if HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Errorf("HTTPStatus = %d, want 422", HTTPStatus(err))
	}
	if !errors.Is(err, ErrIndexRejected) {
		t.Error("should wrap ErrIndexRejected")
	}
}
