// internal/nav/pagedata.go
//
// Shared template payload for page renders.  Every page component hands its
// template the same base map: the header view, the session, the current
// page, any pending toast, and whether the auth modal should open.  Page
// handlers add their own keys on top.

package nav

import (
	"net/http"
	"time"

	"github.com/farmsathi/portal/internal/form"
	"github.com/farmsathi/portal/internal/guard"
	"github.com/farmsathi/portal/internal/message"
	"github.com/farmsathi/portal/internal/page"
	"github.com/farmsathi/portal/internal/session"
)

// PageData assembles the base template payload.  The auth modal opens when
// the route guard requested a prompt or the request carries ?auth=open
// (the Get Started flow).
func PageData(w http.ResponseWriter, r *http.Request, current page.Identity) map[string]any {
	sess := session.SessionFromContext(r.Context())

	data := map[string]any{
		"Req":       r,
		"Session":   sess,
		"Nav":       Build(sess, current),
		"Page":      current,
		"AuthModal": guard.PromptRequested(r.Context()) || r.URL.Query().Get("auth") == "open",
	}

	if toast, ok := message.Pop(w, r); ok {
		data["Toast"] = toast
	}
	if tok, err := form.GenerateToken(); err == nil {
		data["CSRFToken"] = tok
	}
	data["RenderTS"] = time.Now().UnixMicro()
	return data
}
