// internal/authgw/mapper_test.go
//
// Unit-tests for the error-code → message table and its fallback tiers.
//
// Run: go test ./internal/authgw -v

package authgw

import (
	"errors"
	"testing"
)

func TestMapErrorKnownCodes(t *testing.T) {
	// Every table entry must map to its exact static string.
	for code, want := range authMessages {
		got := MapError(&AuthError{Code: code, Message: "raw provider text"})
		if got != want {
			t.Errorf("code %s: got %q, want %q", code, got, want)
		}
	}
}

func TestMapErrorSpotChecks(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{CodeWeakPassword, "Password is too weak. Please use at least 6 characters."},
		{CodeUserNotFound, "No account found with this email. Please check your email or sign up."},
		{CodePopupBlocked, "Popup was blocked by your browser. Please allow popups for this site and try again."},
		{CodeTooManyRequests, "Too many failed attempts. Please try again later or reset your password."},
	}
	for _, tc := range cases {
		if got := MapError(&AuthError{Code: tc.code}); got != tc.want {
			t.Errorf("%s: got %q", tc.code, got)
		}
	}
}

func TestMapErrorUnknownAuthCode(t *testing.T) {
	got := MapError(&AuthError{Code: "auth/quota-exceeded", Message: "whatever"})
	if got != genericAuthMessage {
		t.Fatalf("unknown auth/ code: got %q", got)
	}
}

func TestMapErrorNonAuthFallsBackToMessage(t *testing.T) {
	got := MapError(&AuthError{Code: "storage/denied", Message: "bucket unavailable"})
	if got != "bucket unavailable" {
		t.Fatalf("non-auth code should fall back to raw message, got %q", got)
	}
}

func TestMapErrorPlainError(t *testing.T) {
	if got := MapError(errors.New("dial tcp: refused")); got != "dial tcp: refused" {
		t.Fatalf("plain error should pass through, got %q", got)
	}
}

func TestMapErrorEmpty(t *testing.T) {
	if got := MapError(&AuthError{}); got != genericMessage {
		t.Fatalf("empty AuthError: got %q", got)
	}
	if got := MapError(nil); got != "" {
		t.Fatalf("nil error: got %q", got)
	}
}
