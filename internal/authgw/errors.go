// internal/authgw/errors.go
//
// Typed errors for the identity-provider gateway.
//
// Context
// -------
// The provider reports failures with a stable `auth/…` code taxonomy.  The
// gateway surfaces them as *AuthError so handlers can branch on codes with
// IsCode and render the user-facing string from MapError.
package authgw

import "errors"

// AuthError carries the provider's stable error code plus its raw message.
type AuthError struct {
	Code    string // e.g. "auth/wrong-password"; may be empty for non-auth failures
	Message string
}

func (e *AuthError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Provider error codes the portal branches on.  The mapper table in
// mapper.go covers the full taxonomy; these constants only name the codes
// that appear in control flow or tests.
const (
	CodeEmailInUse         = "auth/email-already-in-use"
	CodeInvalidEmail       = "auth/invalid-email"
	CodeWeakPassword       = "auth/weak-password"
	CodeUserDisabled       = "auth/user-disabled"
	CodeUserNotFound       = "auth/user-not-found"
	CodeWrongPassword      = "auth/wrong-password"
	CodeInvalidCredential  = "auth/invalid-credential"
	CodeTooManyRequests    = "auth/too-many-requests"
	CodePopupClosed        = "auth/popup-closed-by-user"
	CodePopupBlocked       = "auth/popup-blocked"
	CodeUnauthorizedDomain = "auth/unauthorized-domain"
	CodeAccountExists      = "auth/account-exists-with-different-credential"
	CodeNetworkFailed      = "auth/network-request-failed"
)

// IsCode reports whether err is an AuthError with the given code.
func IsCode(err error, code string) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Code == code
}
