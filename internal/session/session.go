// internal/session/session.go
//
// Cookie-backed session and visitor identity.
//
// Context
// -------
// Two cookies drive the portal:
//
//   - `farmsathi_session` — the authenticated identity, stored as
//     base64url(JSON) + "." + base64url(HMAC-SHA256).  The signature uses a
//     process-wide key (FARMSATHI_SESSION_KEY, 32-byte base64); a tampered
//     or unsigned cookie reads as anonymous.
//   - `farmsathi_visitor` — a random UUID minted on first contact.  It scopes
//     the redirect slot and chat-widget flag in the kv store, for anonymous
//     and authenticated visitors alike.
//
// The Middleware below ensures the visitor cookie and parks both values in
// the request context so handlers never reparse cookies.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farmsathi/portal/internal/authgw"
)

const (
	authCookieName    = "farmsathi_session"
	visitorCookieName = "farmsathi_visitor"
	secretEnvKey      = "FARMSATHI_SESSION_KEY"
	authMaxAge        = 14 * 24 * time.Hour
	visitorMaxAge     = 30 * 24 * time.Hour
)

type contextKey int

const (
	identityKey contextKey = iota
	visitorKey
)

var (
	secretOnce sync.Once
	secretKey  []byte
)

/*──────────────────────────── cookie writers ──────────────────────────────*/

// LoginUser sets the signed session cookie.  Callers invoke this after the
// gateway reports a successful authentication.
func LoginUser(w http.ResponseWriter, r *http.Request, id authgw.Identity) {
	payload, err := json.Marshal(id)
	if err != nil {
		return
	}
	enc := base64.RawURLEncoding.EncodeToString(payload)
	val := enc + "." + sign(enc)

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(authMaxAge),
	})
}

// LogoutUser clears the session cookie.
func LogoutUser(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

/*──────────────────────────── cookie readers ──────────────────────────────*/

// Current returns the identity stored in the session cookie, if any.
// ok == false when the cookie is missing, malformed, or mis-signed.
func Current(r *http.Request) (authgw.Identity, bool) {
	c, err := r.Cookie(authCookieName)
	if err != nil || c.Value == "" {
		return authgw.Identity{}, false
	}

	enc, sig, found := strings.Cut(c.Value, ".")
	if !found || !hmac.Equal([]byte(sig), []byte(sign(enc))) {
		return authgw.Identity{}, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return authgw.Identity{}, false
	}
	var id authgw.Identity
	if err := json.Unmarshal(raw, &id); err != nil || id.UID == "" {
		return authgw.Identity{}, false
	}
	return id, true
}

// EnsureVisitor returns the visitor ID, minting and setting the cookie when
// absent.
func EnsureVisitor(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(visitorMaxAge),
	})
	return id
}

/*──────────────────────────── middleware ──────────────────────────────────*/

// Middleware ensures the visitor cookie and stores visitor ID plus the
// current session in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitor := EnsureVisitor(w, r)

		ctx := context.WithValue(r.Context(), visitorKey, visitor)
		if id, ok := Current(r); ok {
			ctx = context.WithValue(ctx, identityKey, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the authenticated identity stored by Middleware.
func FromContext(ctx context.Context) (authgw.Identity, bool) {
	id, ok := ctx.Value(identityKey).(authgw.Identity)
	return id, ok
}

// SessionFromContext folds the context identity into an authgw.Session.
func SessionFromContext(ctx context.Context) authgw.Session {
	if id, ok := FromContext(ctx); ok {
		return authgw.Authenticated(id)
	}
	return authgw.Anonymous()
}

// VisitorFromContext returns the visitor ID stored by Middleware.
func VisitorFromContext(ctx context.Context) string {
	v, _ := ctx.Value(visitorKey).(string)
	return v
}

/*──────────────────────────── signing ─────────────────────────────────────*/

func sign(payload string) string {
	mac := hmac.New(sha256.New, fetchSecret())
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// fetchSecret loads (or generates) the process-wide signing key exactly
// once.  In production set FARMSATHI_SESSION_KEY to a 32-byte base64 string;
// the random fallback invalidates sessions on restart.
func fetchSecret() []byte {
	secretOnce.Do(func() {
		if env := os.Getenv(secretEnvKey); env != "" {
			if b, err := base64.RawURLEncoding.DecodeString(env); err == nil && len(b) >= 32 {
				secretKey = b
				return
			}
		}
		secretKey = make([]byte, 32)
		_, _ = rand.Read(secretKey)
		os.Stderr.WriteString("[farmsathi] WARNING: " + secretEnvKey + " not set – using random key\n")
	})
	return secretKey
}
