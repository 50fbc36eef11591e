// components/contact/contact.go
//
// Feedback and contact pages.  Both forms hand off to the email-delivery
// collaborator; the only difference is the template and the phone field.
//
// Workflow
// --------
// POST → validate → build template params (blank fields get the documented
// fallbacks) → send → toast + 303 back to the page.  Delivery failures show
// the send error as an error toast; the visitor's input is not persisted.

package contact

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farmsathi/portal/internal/component"
	"github.com/farmsathi/portal/internal/email"
	"github.com/farmsathi/portal/internal/form"
	"github.com/farmsathi/portal/internal/message"
	"github.com/farmsathi/portal/internal/nav"
	"github.com/farmsathi/portal/internal/page"
	"github.com/farmsathi/portal/internal/view"
)

func init() { component.Register(&Component{}) }

type Component struct {
	env *component.Env
}

func (c *Component) Name() string { return "contact" }

func (c *Component) Init(env *component.Env) error {
	c.env = env
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Get("/feedback.html", c.pageHandler("feedback", page.Feedback, "contact/feedback"))
	r.Post("/feedback.html", c.handleFeedbackSubmit)
	r.Get("/contact.html", c.pageHandler("contact", page.Contact, "contact/contact"))
	r.Post("/contact.html", c.handleContactSubmit)
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) pageHandler(tpl string, pg page.Identity, formID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := nav.PageData(w, r, pg)
		if fd, ok := form.GetFormDef(formID); ok {
			data["Form"] = fd
		}
		if err := view.Render(w, "contact", tpl, data, view.CacheDefault); err != nil {
			c.env.Log.Errorw("render contact page", "tpl", tpl, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func (c *Component) handleFeedbackSubmit(w http.ResponseWriter, r *http.Request) {
	clean, err := form.HandleSubmit("contact/feedback", r)
	if err != nil {
		c.failSubmit(w, r, page.Feedback, err)
		return
	}

	params := email.FeedbackParams(str(clean, "name"), str(clean, "email"), str(clean, "message"))
	if err := c.env.Email.Send(r.Context(), c.env.Config.Email.FeedbackTemplate, params); err != nil {
		message.Error(w, err.Error())
		http.Redirect(w, r, page.Feedback.Path(), http.StatusSeeOther)
		return
	}

	message.Success(w, "Feedback submitted successfully! We'll get back to you soon.")
	http.Redirect(w, r, page.Feedback.Path(), http.StatusSeeOther)
}

func (c *Component) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	clean, err := form.HandleSubmit("contact/contact", r)
	if err != nil {
		c.failSubmit(w, r, page.Contact, err)
		return
	}

	params := email.ContactParams(str(clean, "name"), str(clean, "email"), str(clean, "phone"), str(clean, "message"))
	if err := c.env.Email.Send(r.Context(), c.env.Config.Email.ContactTemplate, params); err != nil {
		message.Error(w, err.Error())
		http.Redirect(w, r, page.Contact.Path(), http.StatusSeeOther)
		return
	}

	message.Success(w, "Message sent successfully! We'll get back to you soon.")
	http.Redirect(w, r, page.Contact.Path(), http.StatusSeeOther)
}

func (c *Component) failSubmit(w http.ResponseWriter, r *http.Request, pg page.Identity, err error) {
	if !form.IsValidationError(err) {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if fields := form.FieldErrors(err); len(fields) > 0 {
		message.Error(w, fields[0].Message)
	}
	http.Redirect(w, r, pg.Path(), http.StatusSeeOther)
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
