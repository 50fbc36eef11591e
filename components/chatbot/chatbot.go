// components/chatbot/chatbot.go
//
// Chatbot endpoints.  The floating panel itself is a widget (see
// widgets/panel.go) rendered into every page footer; these handlers mutate
// its state: toggling the panel open or closed and appending one
// question/answer exchange to the visitor's transcript.
//
// Both endpoints finish with a 303 back to the referring page, so the next
// page render shows the updated panel.

package chatbot

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/farmsathi/portal/components/chatbot/widgets"
	"github.com/farmsathi/portal/internal/component"
	"github.com/farmsathi/portal/internal/form"
	"github.com/farmsathi/portal/internal/page"
	"github.com/farmsathi/portal/internal/session"
)

func init() { component.Register(&Component{}) }

type Component struct {
	env *component.Env
}

func (c *Component) Name() string { return "chatbot" }

func (c *Component) Init(env *component.Env) error {
	c.env = env
	widgets.Configure(env)
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Post("/api/chatbot/message", c.handleMessage)
	r.Post("/api/chatbot/toggle", c.handleToggle)
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if !form.VerifyToken(r.PostFormValue("csrf_token")) {
		http.Redirect(w, r, backTo(r), http.StatusSeeOther)
		return
	}

	visitor := session.VisitorFromContext(r.Context())
	c.env.Chat.Ask(r.Context(), visitor, r.PostFormValue("query"))

	// Keep the panel open so the reply is visible on the next render.
	if err := c.env.KV.Set(r.Context(), widgets.OpenKey(visitor), "1"); err != nil {
		c.env.Log.Warnw("persist chat panel state", "err", err)
	}

	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (c *Component) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitor := session.VisitorFromContext(ctx)
	key := widgets.OpenKey(visitor)

	if _, open, _ := c.env.KV.Get(ctx, key); open {
		if err := c.env.KV.Delete(ctx, key); err != nil {
			c.env.Log.Warnw("persist chat panel state", "err", err)
		}
	} else {
		if err := c.env.KV.Set(ctx, key, "1"); err != nil {
			c.env.Log.Warnw("persist chat panel state", "err", err)
		}
	}

	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo picks the page to return to after a chatbot action: the Referer
// when it is one of our pages, the dashboard otherwise.
func backTo(r *http.Request) string {
	ref := r.Referer()
	if i := strings.Index(ref, "://"); i >= 0 {
		if j := strings.Index(ref[i+3:], "/"); j >= 0 {
			ref = ref[i+3+j:]
		} else {
			ref = "/"
		}
	}
	if path := strings.SplitN(ref, "?", 2)[0]; path != "" {
		if pg, ok := page.FromPath(path); ok {
			return pg.Path()
		}
	}
	return page.Dashboard.Path()
}
