// internal/message/message.go
//
// One-shot page toasts.
//
// Context
//   Form handlers finish with a redirect and need the next page render to
//   show a success or error banner exactly once.  The toast rides in a
//   short-lived cookie: Push sets it, Pop reads and clears it.  Values are
//   base64 JSON so commas and quotes in the text survive cookie encoding.
//
//------------------------------------------------------------------------------

package message

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Kind selects the toast styling.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Toast is one banner to show on the next render.
type Toast struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

const cookieName = "farmsathi_toast"

// Push queues a toast for the next page render.
func Push(w http.ResponseWriter, text string, kind Kind) {
	raw, err := json.Marshal(Toast{Text: text, Kind: kind})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Success queues a success toast.
func Success(w http.ResponseWriter, text string) { Push(w, text, KindSuccess) }

// Error queues an error toast.
func Error(w http.ResponseWriter, text string) { Push(w, text, KindError) }

// Pop returns the pending toast, clearing it so it shows only once.  The
// boolean is false when there is nothing queued or the cookie is mangled.
func Pop(w http.ResponseWriter, r *http.Request) (Toast, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return Toast{}, false
	}

	// Clear regardless of whether the payload decodes.
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return Toast{}, false
	}
	var t Toast
	if err := json.Unmarshal(raw, &t); err != nil || t.Text == "" {
		return Toast{}, false
	}
	return t, true
}
