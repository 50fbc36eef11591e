// internal/authgw/mapper.go
//
// Provider error code → user-facing message table.
//
// Context
// -------
// The identity provider's codes are stable but unfriendly.  MapError turns
// them into the strings shown inline in the auth prompt.  Unknown codes under
// the `auth/` namespace get a generic authentication message; anything else
// falls back to the raw error text, then to a last-resort generic string.
// The table is a pure lookup so it is trivially exhaustive to test.
package authgw

import (
	"errors"
	"strings"
)

const (
	genericAuthMessage = "Authentication error occurred. Please try again or contact support if the problem persists."
	genericMessage     = "An unexpected error occurred. Please try again."
)

var authMessages = map[string]string{
	"auth/email-already-in-use":                    "This email is already registered. Please use a different email or try logging in.",
	"auth/invalid-email":                           "Please enter a valid email address.",
	"auth/operation-not-allowed":                   "This sign-in method is not enabled. Please contact support.",
	"auth/weak-password":                           "Password is too weak. Please use at least 6 characters.",
	"auth/user-disabled":                           "This account has been disabled. Please contact support.",
	"auth/user-not-found":                          "No account found with this email. Please check your email or sign up.",
	"auth/wrong-password":                          "Incorrect password. Please try again or reset your password.",
	"auth/invalid-credential":                      "Invalid email or password. Please check your credentials and try again.",
	"auth/invalid-verification-code":               "Invalid verification code. Please try again.",
	"auth/invalid-verification-id":                 "Verification session expired. Please try again.",
	"auth/code-expired":                            "Verification code has expired. Please request a new one.",
	"auth/credential-already-in-use":               "This account is already linked to another user.",
	"auth/email-already-exists":                    "This email is already in use. Please use a different email.",
	"auth/phone-number-already-exists":             "This phone number is already in use.",
	"auth/popup-closed-by-user":                    "Sign-in popup was closed. Please try again.",
	"auth/popup-blocked":                           "Popup was blocked by your browser. Please allow popups for this site and try again.",
	"auth/unauthorized-domain":                     "This domain is not authorized. Please contact support or try from an authorized domain.",
	"auth/network-request-failed":                  "Network error. Please check your internet connection and try again.",
	"auth/too-many-requests":                       "Too many failed attempts. Please try again later or reset your password.",
	"auth/requires-recent-login":                   "For security, please log out and log in again to perform this action.",
	"auth/account-exists-with-different-credential": "An account already exists with the same email but different sign-in method. Please use the correct sign-in method.",
	"auth/timeout":                                 "Request timed out. Please check your connection and try again.",
	"auth/cancelled-popup-request":                 "Sign-in was cancelled. Please try again.",
}

// MapError returns the user-facing message for any error coming out of the
// gateway.
func MapError(err error) string {
	if err == nil {
		return ""
	}

	var ae *AuthError
	if errors.As(err, &ae) {
		if msg, ok := authMessages[ae.Code]; ok {
			return msg
		}
		if strings.HasPrefix(ae.Code, "auth/") {
			return genericAuthMessage
		}
		if ae.Message != "" {
			return ae.Message
		}
		return genericMessage
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return genericMessage
}
