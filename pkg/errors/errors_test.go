package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeStructure, "collection anchor not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeStructure {
		t.Errorf("expected code %s, got %s", ErrCodeStructure, err.Code)
	}
	if err.Message != "collection anchor not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeUnavailable, "fetch release notes", cause)

	if err.Code != ErrCodeUnavailable {
		t.Errorf("expected code %s, got %s", ErrCodeUnavailable, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("invalid character")
	err := WrapWithContext(ErrCodeModelOutput, "decode model output", cause, map[string]any{
		"raw": "not json",
	})

	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["raw"] != "not json" {
		t.Errorf("expected raw text in context")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeConfiguration, "OPENAI_API_KEY not set"),
			expected: "[CONFIGURATION] OPENAI_API_KEY not set",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"structured", New(ErrCodeStructure, "x"), ErrCodeStructure},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrCodeModelOutput, "x")), ErrCodeModelOutput},
		{"plain", errors.New("plain"), ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestContextOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewWithContext(ErrCodeModelOutput, "x", map[string]any{"raw": "```"}))
	if ContextOf(err)["raw"] != "```" {
		t.Errorf("expected context to survive wrapping")
	}
	if ContextOf(errors.New("plain")) != nil {
		t.Errorf("expected nil context for plain error")
	}
}
