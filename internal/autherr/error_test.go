package autherr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestUnauthorizedCarriesStatusAndMessages(t *testing.T) {
	err := Unauthorized("Authentication failed.", "Contact support.")

	if err.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", err.Status, http.StatusUnauthorized)
	}
	if len(err.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(err.Messages))
	}
	if got, want := err.Error(), "Authentication failed.; Contact support."; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", Forbidden("permission denied"))

	var idErr *Error
	if !errors.As(wrapped, &idErr) {
		t.Fatal("errors.As failed to unwrap *Error")
	}
	if idErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", idErr.Status, http.StatusForbidden)
	}
}
