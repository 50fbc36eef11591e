// components/survey/survey.go
//
// Farm survey: a short questionnaire whose answers are stored per visitor
// and listed back on the page.  The survey feeds later advisory tuning, so
// unlike the advisor tools it persists.

package survey

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farmsathi/portal/internal/component"
	"github.com/farmsathi/portal/internal/form"
	"github.com/farmsathi/portal/internal/message"
	"github.com/farmsathi/portal/internal/nav"
	"github.com/farmsathi/portal/internal/page"
	"github.com/farmsathi/portal/internal/session"
	"github.com/farmsathi/portal/internal/survey"
	"github.com/farmsathi/portal/internal/view"
)

func init() { component.Register(&Component{}) }

type Component struct {
	env *component.Env
}

func (c *Component) Name() string { return "survey" }

func (c *Component) Init(env *component.Env) error {
	c.env = env
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Get("/survey.html", c.handlePage)
	r.Post("/survey.html", c.handleSubmit)
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request) {
	data := nav.PageData(w, r, page.Survey)
	if fd, ok := form.GetFormDef("survey/survey"); ok {
		data["Form"] = fd
	}

	visitor := session.VisitorFromContext(r.Context())
	if recent, err := c.env.Surveys.Recent(r.Context(), visitor, 10); err != nil {
		c.env.Log.Errorw("load recent surveys", "visitor", visitor, "err", err)
	} else {
		data["Recent"] = recent
	}

	if err := view.Render(w, "survey", "survey", data, view.CacheDefault); err != nil {
		c.env.Log.Errorw("render survey", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	clean, err := form.HandleSubmit("survey/survey", r)
	if err != nil {
		if form.IsValidationError(err) {
			if fields := form.FieldErrors(err); len(fields) > 0 {
				message.Error(w, fields[0].Message)
			}
			http.Redirect(w, r, page.Survey.Path(), http.StatusSeeOther)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	sub := survey.Submission{
		VisitorID:  session.VisitorFromContext(r.Context()),
		FarmSize:   str(clean, "farmSize"),
		CropTypes:  str(clean, "cropTypes"),
		Irrigation: str(clean, "irrigation"),
		Challenges: str(clean, "challenges"),
	}
	if err := c.env.Surveys.Save(r.Context(), &sub); err != nil {
		c.env.Log.Errorw("save survey", "err", err)
		message.Error(w, "Could not save your survey.  Please try again.")
		http.Redirect(w, r, page.Survey.Path(), http.StatusSeeOther)
		return
	}

	message.Success(w, "Survey submitted.")
	http.Redirect(w, r, page.Survey.Path(), http.StatusSeeOther)
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
