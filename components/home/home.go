// components/home/home.go
//
// Public landing page and the post-login dashboard.
//
// Context
// -------
// The index is the only unguarded page: it carries the hero copy, the auth
// modal markup, and the Get Started button that kicks off the login flow.
// The dashboard is the default landing spot after authentication and links
// out to every advisory tool.

package home

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farmsathi/portal/internal/component"
	"github.com/farmsathi/portal/internal/head"
	"github.com/farmsathi/portal/internal/nav"
	"github.com/farmsathi/portal/internal/page"
	"github.com/farmsathi/portal/internal/view"
)

func init() { component.Register(&Component{}) }

type Component struct {
	env *component.Env
}

func (c *Component) Name() string { return "home" }

func (c *Component) Init(env *component.Env) error {
	c.env = env
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Get("/", c.handleIndex)
	r.Get("/index.html", c.handleIndex)
	r.Get("/dashboard.html", c.handleDashboard)
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleIndex(w http.ResponseWriter, r *http.Request) {
	h := head.New()
	h.SetTitle("FarmSathi – Smart Farming Companion")
	h.Meta(`<meta name="description" content="Crop recommendations, fertilizer advice and plant disease detection for farmers.">`)
	h.JSONLD(`{"@context":"https://schema.org","@type":"WebSite","name":"FarmSathi"}`)

	data := nav.PageData(w, r, page.Index)
	data["Head"] = h

	if err := view.Render(w, "home", "index", data, view.CacheDefault); err != nil {
		c.env.Log.Errorw("render index", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (c *Component) handleDashboard(w http.ResponseWriter, r *http.Request) {
	h := head.New()
	h.SetTitle("Dashboard – FarmSathi")

	data := nav.PageData(w, r, page.Dashboard)
	data["Head"] = h

	if err := view.Render(w, "home", "dashboard", data, view.CacheDefault); err != nil {
		c.env.Log.Errorw("render dashboard", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
