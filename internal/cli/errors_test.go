package cli

import (
	"errors"
	"testing"

	"github.com/mark3labs/oas2rst/internal/document"
)

func TestUsageErrorWrapsCause(t *testing.T) {
	t.Parallel()
	err := newUsageErrorf("render: %w", document.ErrUndefinedPaths)
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage")
	}
	if !errors.Is(err, document.ErrUndefinedPaths) {
		t.Fatalf("expected cause to be reachable")
	}
	if got, want := err.Error(), "render: "+document.ErrUndefinedPaths.Error(); got != want {
		t.Fatalf("message: want %q got %q", want, got)
	}
	if errors.Unwrap(newUsageError("plain")) != nil {
		t.Fatalf("plain usage error must not wrap")
	}
}
