// internal/guard/guard.go
//
// Route guard: the session × page state machine.
//
// Context
// -------
// Every page request is re-evaluated against the current session state:
//
//   - Anonymous on a protected page  → record the page as the post-login
//     redirect target and open the auth prompt.  The visitor stays on the
//     page; the prompt is modal until dismissed or authentication succeeds.
//   - Authenticated with a pending target that differs from the current
//     path → navigate there (303).  The target is consumed either way, so a
//     matching target simply dissolves instead of looping.
//   - Authenticated on the landing page with no pending target → navigate
//     to the dashboard as the default destination.
//
// Evaluate is pure; the Middleware wires it to the redirect store and the
// request context.  There is no terminal state — the machine runs again on
// every navigation.
package guard

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/authgw"
	"github.com/farmsathi/portal/internal/page"
	"github.com/farmsathi/portal/internal/redirect"
	"github.com/farmsathi/portal/internal/session"
)

// Action is what the guard asks the HTTP layer to do.
type Action int

const (
	ActionNone Action = iota
	ActionPrompt
	ActionNavigate
)

// Decision pairs an action with its navigation target (ActionNavigate only).
type Decision struct {
	Action Action
	Target string
}

// Evaluate runs one step of the state machine.  storedTarget/hasStored is
// the already-consumed redirect slot; currentPath is the request path.
func Evaluate(pg page.Identity, st authgw.State, currentPath, storedTarget string, hasStored bool) Decision {
	switch st {
	case authgw.StateAnonymous:
		if pg.Protected() {
			return Decision{Action: ActionPrompt}
		}
		return Decision{Action: ActionNone}

	case authgw.StateAuthenticated:
		if hasStored {
			if storedTarget == currentPath {
				return Decision{Action: ActionNone} // self-redirect would loop
			}
			return Decision{Action: ActionNavigate, Target: storedTarget}
		}
		if pg == page.Index {
			return Decision{Action: ActionNavigate, Target: page.Dashboard.Path()}
		}
		return Decision{Action: ActionNone}

	default: // StateUnknown: wait for the first session notification
		return Decision{Action: ActionNone}
	}
}

//
// HTTP wiring
//

type promptKey struct{}

// PromptRequested reports whether the guard asked for the auth prompt on
// this request.  Views render the modal open when true.
func PromptRequested(ctx context.Context) bool {
	v, _ := ctx.Value(promptKey{}).(bool)
	return v
}

// Guard binds the state machine to the redirect store.
type Guard struct {
	redirects *redirect.Store
	log       *zap.SugaredLogger
}

// New returns a Guard over the given redirect store.
func New(redirects *redirect.Store, log *zap.SugaredLogger) *Guard {
	if log == nil {
		log = zap.S()
	}
	return &Guard{redirects: redirects, log: log}
}

// Middleware applies the state machine to page routes.  Non-page routes
// (APIs, the auth endpoints, assets) pass through untouched.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pg, ok := page.FromPath(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		sess := session.SessionFromContext(ctx)
		visitor := session.VisitorFromContext(ctx)

		var stored string
		var hasStored bool
		if sess.State == authgw.StateAuthenticated {
			stored, hasStored = g.redirects.ConsumeTarget(ctx, visitor)
		}

		d := Evaluate(pg, sess.State, r.URL.Path, stored, hasStored)
		switch d.Action {
		case ActionNavigate:
			g.log.Debugw("post-login redirect", "from", r.URL.Path, "to", d.Target)
			http.Redirect(w, r, d.Target, http.StatusSeeOther)
			return

		case ActionPrompt:
			g.redirects.SetTarget(ctx, visitor, r.URL.Path)
			r = r.WithContext(context.WithValue(ctx, promptKey{}, true))
		}

		next.ServeHTTP(w, r)
	})
}
