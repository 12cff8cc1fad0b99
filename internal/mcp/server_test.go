package mcp

import (
	"context"
	"testing"
	"time"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestParseDateOr verifies explicit dates, the midnight-UTC fallback, and
// rejection of malformed input.
func TestParseDateOr(t *testing.T) {
	fallback := time.Date(2025, 3, 11, 15, 45, 0, 0, time.UTC)

	got, err := parseDateOr("", fallback)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("empty input = %v, want fallback at midnight UTC %v", got, want)
	}

	got, err = parseDateOr("2025-01-20", fallback)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2025 || got.Month() != 1 || got.Day() != 20 {
		t.Errorf("got %v, want 2025-01-20", got)
	}

	if _, err := parseDateOr("20/01/2025", fallback); err == nil {
		t.Error("expected error for malformed date")
	}
}
