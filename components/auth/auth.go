// components/auth/auth.go
//
// Authentication component: email/password sign-in and sign-up, federated
// Google sign-in, the Get Started entry point, and sign-out.  Success and
// failure both finish with a redirect; the guard middleware performs the
// post-login navigation on the next page load, and failures reopen the
// auth modal with the mapped error in a toast.
//
//------------------------------------------------------------------------------

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/farmsathi/portal/internal/authgw"
	"github.com/farmsathi/portal/internal/component"
	"github.com/farmsathi/portal/internal/form"
	"github.com/farmsathi/portal/internal/message"
	"github.com/farmsathi/portal/internal/page"
	"github.com/farmsathi/portal/internal/session"
)

// Compile-time assertions.
var (
	_ component.Component   = (*Component)(nil)
	_ component.Initializer = (*Component)(nil)
)

// Component encapsulates the authentication flow.
type Component struct {
	env *component.Env
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Init captures process resources for the handlers.
func (c *Component) Init(env *component.Env) error {
	c.env = env
	return nil
}

// Routes registers the auth endpoints on the shared router.
func (c *Component) Routes(r chi.Router) {
	r.Get("/api/auth/start", c.handleStart)
	r.Post("/api/auth/login", c.handleLogin)
	r.Post("/api/auth/signup", c.handleSignup)
	r.Post("/api/auth/google", c.handleGoogle)
	r.Post("/api/auth/logout", c.handleLogout)
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

// handleStart is the Get Started entry point: it reopens the current page
// with the auth modal showing.  From the index the post-login destination
// is the dashboard; from any inner page it is that page, so a visitor
// prompted mid-task lands back where they were.
func (c *Component) handleStart(w http.ResponseWriter, r *http.Request) {
	visitor := session.VisitorFromContext(r.Context())
	back := returnPath(r)
	target := back
	if target == page.Index.Path() {
		target = page.Dashboard.Path()
	}
	c.env.Redirects.SetTarget(r.Context(), visitor, target)
	http.Redirect(w, r, withAuthModal(back), http.StatusSeeOther)
}

func (c *Component) handleLogin(w http.ResponseWriter, r *http.Request) {
	data, err := form.HandleSubmit("auth/login", r)
	if err != nil {
		c.failAuth(w, r, err)
		return
	}

	sess, err := c.env.Auth.SignIn(r.Context(), data["loginEmail"].(string), data["loginPassword"].(string))
	if err != nil {
		c.failAuth(w, r, err)
		return
	}

	session.LoginUser(w, r, sess.Identity)
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

func (c *Component) handleSignup(w http.ResponseWriter, r *http.Request) {
	data, err := form.HandleSubmit("auth/signup", r)
	if err != nil {
		c.failAuth(w, r, err)
		return
	}

	sess, err := c.env.Auth.SignUp(r.Context(), data["signupEmail"].(string), data["signupPassword"].(string))
	if err != nil {
		c.failAuth(w, r, err)
		return
	}

	session.LoginUser(w, r, sess.Identity)
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// handleGoogle exchanges a federated credential (the token posted by the
// Google sign-in flow) for a portal session.
func (c *Component) handleGoogle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	cred := strings.TrimSpace(r.PostFormValue("credential"))
	if cred == "" {
		c.failAuth(w, r, &authgw.AuthError{Code: authgw.CodePopupClosed})
		return
	}

	sess, err := c.env.Auth.SignInFederated(r.Context(), cred)
	if err != nil {
		c.failAuth(w, r, err)
		return
	}

	session.LoginUser(w, r, sess.Identity)
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

func (c *Component) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id, ok := session.FromContext(r.Context()); ok {
		c.env.Auth.SignOut(r.Context(), id.IDToken)
	}
	session.LogoutUser(w, r)
	http.Redirect(w, r, page.Index.Path(), http.StatusSeeOther)
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// failAuth queues the user-facing error and reopens the auth modal on the
// page the request came from.
func (c *Component) failAuth(w http.ResponseWriter, r *http.Request, err error) {
	var msg string
	switch {
	case form.IsValidationError(err):
		fields := form.FieldErrors(err)
		if len(fields) > 0 {
			msg = fields[0].Message
		} else {
			msg = "Please fill all required fields."
		}
	default:
		msg = authgw.MapError(err)
	}
	message.Error(w, msg)
	http.Redirect(w, r, withAuthModal(returnPath(r)), http.StatusSeeOther)
}

// returnPath picks the page to land on after an auth action: the posted
// return_to field when it names a known page, else the Referer path, else
// the index.
func returnPath(r *http.Request) string {
	if p := r.FormValue("return_to"); p != "" {
		if _, ok := page.FromPath(p); ok {
			return p
		}
	}
	if ref := r.Referer(); ref != "" {
		if u, err := r.URL.Parse(ref); err == nil {
			if _, ok := page.FromPath(u.Path); ok {
				return u.Path
			}
		}
	}
	return page.Index.Path()
}

func withAuthModal(path string) string {
	return path + "?auth=open"
}
