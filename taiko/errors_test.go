package taiko

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewError(CodeWireError, "open browser", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the underlying cause")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty Error() string")
	}
}

func TestErrorIsByCodeOnly(t *testing.T) {
	a := NewError(CodeElementNotFound, "first lookup", nil)
	b := NewError(CodeElementNotFound, "second lookup", fmt.Errorf("boom"))
	c := NewError(CodeNavigationTimeout, "goto", nil)

	if !errors.Is(a, &Error{Code: CodeElementNotFound}) {
		t.Fatalf("expected a to match a bare code-only target")
	}
	if !a.Is(b) {
		t.Fatalf("expected a.Is(b) to match on code alone despite differing messages")
	}
	if a.Is(c) {
		t.Fatalf("did not expect a.Is(c) to match across different codes")
	}
}

func TestErrNotInitialized(t *testing.T) {
	if ErrNotInitialized.Code != CodeNotInitialized {
		t.Fatalf("expected ErrNotInitialized to carry CodeNotInitialized, got %s", ErrNotInitialized.Code)
	}
}
