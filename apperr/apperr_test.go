// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", NotFound("Poll not found"), CodeNotFound},
		{"conflict", Conflict("already voted"), CodeConflict},
		{"wrapped", fmt.Errorf("submit: %w", Forbidden("nope")), CodeForbidden},
		{"plain error", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[string]int{
		CodeNotFound:     http.StatusNotFound,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeValidation:   http.StatusBadRequest,
		CodeConflict:     http.StatusConflict,
		CodeInternal:     http.StatusInternalServerError,
		"SOMETHING_ELSE": http.StatusInternalServerError,
	}

	for code, want := range tests {
		if got := HTTPStatus(code); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal("Database error", cause)

	if MessageOf(err) != "Database error" {
		t.Errorf("expected client message 'Database error', got %q", MessageOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("expected Internal error to unwrap to its cause")
	}
	if MessageOf(cause) != "Internal server error" {
		t.Errorf("expected generic message for non-app errors, got %q", MessageOf(cause))
	}
}
