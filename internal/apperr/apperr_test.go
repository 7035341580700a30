package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := NotFound("document %s not found", "abc")
	wrapped := fmt.Errorf("load: %w", base)

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf: want=%q got=%q", KindNotFound, got)
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatalf("Is(NotFound) = false")
	}
	if Is(wrapped, KindInvalidInput) {
		t.Fatalf("Is(InvalidInput) = true")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf: want=%q got=%q", KindInternal, got)
	}
	if Is(nil, KindInternal) {
		t.Fatalf("Is(nil) should be false")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := External(cause, "gemini generate")
	if err.Error() != "gemini generate: deadline exceeded" {
		t.Fatalf("Error(): got=%q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(cause) = false")
	}
	if Invalid("missing %s", "url").Error() != "missing url" {
		t.Fatalf("Invalid message mismatch")
	}
}
