package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelreview/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConflict, "review", "decide", "already decided", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"review", "decide", "already decided"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestKindOfMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.Kind
	}{
		{"nil", nil, ""},
		{"validation", services.Wrap(services.ErrValidation, "timecode", "convert", "negative", nil), services.KindValidation},
		{"not found", fmt.Errorf("load: %w", services.Wrap(services.ErrNotFound, "comments", "find", "missing", nil)), services.KindNotFound},
		{"conflict", services.Wrap(services.ErrConflict, "review", "decide", "", nil), services.KindConflict},
		{"configuration", services.ErrConfiguration, services.KindConfiguration},
		{"forbidden", services.Wrap(services.ErrForbidden, "review", "access", "password mismatch", nil), services.KindForbidden},
		{"other", errors.New("disk on fire"), services.KindInternal},
	}
	for _, tt := range tests {
		if got := services.KindOf(tt.err); got != tt.want {
			t.Fatalf("%s: KindOf = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker by default, got %v", err)
	}
	if !strings.Contains(err.Error(), "engine failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
	if !services.IsRecoverable(err) {
		t.Fatal("expected validation errors to be recoverable")
	}
	if services.IsRecoverable(errors.New("x")) {
		t.Fatal("expected unclassified errors to be unrecoverable")
	}
}
