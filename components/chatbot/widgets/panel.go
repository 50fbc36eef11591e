// components/chatbot/widgets/panel.go
//
// Floating assistant panel, rendered into every page footer via the widget
// registry: {{ widget .Req "chatbot/panel" (dict) }}.
//
// The panel reads its open/closed flag and the visitor's transcript at
// render time; the chatbot component's POST endpoints are what change them.

package widgets

import (
	"html/template"
	"net/http"
	"time"

	"github.com/farmsathi/portal/internal/component"
	"github.com/farmsathi/portal/internal/form"
	"github.com/farmsathi/portal/internal/session"
	"github.com/farmsathi/portal/internal/view"
	"github.com/farmsathi/portal/internal/widget"
)

func init() { widget.Register(&Panel{}) }

// OpenKey is the KV slot holding the visitor's panel-open flag.
func OpenKey(visitorID string) string { return "chatbot:open:" + visitorID }

// env is set once from the chatbot component's Init, before the server
// accepts requests.
var env *component.Env

// Configure hands the widget its dependencies.
func Configure(e *component.Env) { env = e }

// Panel renders the chat transcript and input form.
type Panel struct{}

func (p *Panel) ID() string { return "chatbot/panel" }

func (p *Panel) Render(r *http.Request, _ map[string]any) (template.HTML, error) {
	if env == nil {
		return "", nil // not configured (tests without the chatbot component)
	}

	ctx := r.Context()
	visitor := session.VisitorFromContext(ctx)

	_, open, _ := env.KV.Get(ctx, OpenKey(visitor))

	data := map[string]any{
		"Open":     open,
		"Messages": env.Chat.Transcript(visitor).Entries(),
		"RenderTS": time.Now().UnixMicro(),
	}
	if tok, err := form.GenerateToken(); err == nil {
		data["CSRFToken"] = tok
	}

	return view.RenderToString("chatbot", "panel", data)
}
