package util

import (
	"errors"
	"net/http"
	"testing"
)

func TestConstructorsCarryStatusAndCode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("no token"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"not found", NewNotFound("course", nil), "NOT_FOUND", http.StatusNotFound},
		{"conflict", NewConflict("already there", nil), "CONFLICT", http.StatusConflict},
		{"internal", NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var de *DomainError
			if !errors.As(tc.err, &de) {
				t.Fatalf("expected a DomainError, got %T", tc.err)
			}
			if de.Code != tc.code || de.HTTPStatus != tc.status {
				t.Fatalf("got code=%q status=%d", de.Code, de.HTTPStatus)
			}
		})
	}
}

func TestNotFoundMessageNamesResource(t *testing.T) {
	err := NewNotFound("course", map[string]any{"courseId": "c1"})
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected a DomainError, got %T", err)
	}
	if de.Message != "course not found" {
		t.Fatalf("unexpected message %q", de.Message)
	}
	if de.Details["courseId"] != "c1" {
		t.Fatalf("expected details preserved, got %v", de.Details)
	}
}

func TestToDomainErrorPassthroughAndWrap(t *testing.T) {
	original := NewConflict("dup", nil)
	if got := ToDomainError(original); got.Code != "CONFLICT" {
		t.Fatalf("expected passthrough, got %q", got.Code)
	}

	plain := errors.New("pool closed")
	wrapped := ToDomainError(plain)
	if wrapped.Code != "INTERNAL_ERROR" || wrapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal mapping, got %+v", wrapped)
	}
	if !errors.Is(wrapped, plain) {
		t.Fatal("expected the cause to stay reachable through Unwrap")
	}

	if ToDomainError(nil) != nil {
		t.Fatal("nil maps to nil")
	}
}
