// components/advisor/advisor.go
//
// Advisory tools: crop recommendation, fertilizer recommendation, and leaf
// disease detection.
//
// Workflow
// --------
// Each tool is one page with a YAML-declared form.  GET renders the empty
// form; POST validates, forwards the clean values to the model backend, and
// re-renders the same page with either the decoded result or the backend's
// failure message.  Nothing is persisted here; results live only in the
// rendered response.

package advisor

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/farmsathi/portal/internal/component"
	"github.com/farmsathi/portal/internal/form"
	"github.com/farmsathi/portal/internal/nav"
	"github.com/farmsathi/portal/internal/page"
	"github.com/farmsathi/portal/internal/view"
)

func init() { component.Register(&Component{}) }

type Component struct {
	env *component.Env
}

func (c *Component) Name() string { return "advisor" }

func (c *Component) Init(env *component.Env) error {
	c.env = env
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Get("/crop-recommend.html", c.pageHandler("crop", page.CropRecommend))
	r.Post("/crop-recommend.html", c.handleCropSubmit)
	r.Get("/fertilizer-recommend.html", c.pageHandler("fertilizer", page.FertilizerRecommend))
	r.Post("/fertilizer-recommend.html", c.handleFertilizerSubmit)
	r.Get("/disease-detect.html", c.pageHandler("disease", page.DiseaseDetect))
	r.Post("/disease-detect.html", c.handleDiseaseSubmit)
}

/*──────────────────────────── Pages ────────────────────────────────────────*/

// pageHandler renders a tool page with no result section.
func (c *Component) pageHandler(tpl string, pg page.Identity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.render(w, r, tpl, pg, nav.PageData(w, r, pg))
	}
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, tpl string, pg page.Identity, data map[string]any) {
	if fd, ok := form.GetFormDef("advisor/" + tpl); ok {
		data["Form"] = fd
	}
	if err := view.Render(w, "advisor", tpl, data, view.CacheDefault); err != nil {
		c.env.Log.Errorw("render advisor page", "tpl", tpl, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

/*──────────────────────────── Submissions ──────────────────────────────────*/

func (c *Component) handleCropSubmit(w http.ResponseWriter, r *http.Request) {
	data := nav.PageData(w, r, page.CropRecommend)

	clean, err := form.HandleSubmit("advisor/crop", r)
	if err != nil {
		c.failValidation(w, r, "crop", page.CropRecommend, data, err)
		return
	}

	res, err := c.env.Remote.SubmitCropForm(r.Context(),
		fieldValues(clean, "N", "P", "K", "temperature", "humidity", "ph", "rainfall"))
	if err != nil {
		data["Error"] = err.Error()
		c.render(w, r, "crop", page.CropRecommend, data)
		return
	}

	data["Result"] = res
	c.render(w, r, "crop", page.CropRecommend, data)
}

func (c *Component) handleFertilizerSubmit(w http.ResponseWriter, r *http.Request) {
	data := nav.PageData(w, r, page.FertilizerRecommend)

	clean, err := form.HandleSubmit("advisor/fertilizer", r)
	if err != nil {
		c.failValidation(w, r, "fertilizer", page.FertilizerRecommend, data, err)
		return
	}

	res, err := c.env.Remote.SubmitFertilizerForm(r.Context(),
		fieldValues(clean, "crop", "N", "P", "K", "ph"))
	if err != nil {
		data["Error"] = err.Error()
		c.render(w, r, "fertilizer", page.FertilizerRecommend, data)
		return
	}

	data["Result"] = res
	c.render(w, r, "fertilizer", page.FertilizerRecommend, data)
}

func (c *Component) handleDiseaseSubmit(w http.ResponseWriter, r *http.Request) {
	data := nav.PageData(w, r, page.DiseaseDetect)

	if err := form.VerifyRequest(r); err != nil {
		c.failValidation(w, r, "disease", page.DiseaseDetect, data, err)
		return
	}

	file, header, err := form.ImageFile(r, "leafImage")
	if err != nil {
		c.failValidation(w, r, "disease", page.DiseaseDetect, data, err)
		return
	}
	defer file.Close()

	res, err := c.env.Remote.SubmitDiseaseImage(r.Context(), header.Filename, file)
	if err != nil {
		data["Error"] = err.Error()
		c.render(w, r, "disease", page.DiseaseDetect, data)
		return
	}

	data["Result"] = res
	c.render(w, r, "disease", page.DiseaseDetect, data)
}

// failValidation re-renders the page with the field errors.  Non-validation
// failures (bad multipart body and the like) surface as a plain 400.
func (c *Component) failValidation(w http.ResponseWriter, r *http.Request, tpl string, pg page.Identity, data map[string]any, err error) {
	if !form.IsValidationError(err) {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	fields := form.FieldErrors(err)
	data["Errors"] = fields
	if len(fields) > 0 {
		data["Error"] = fields[0].Message
	}
	c.render(w, r, tpl, pg, data)
}

// fieldValues flattens the sanitized form map back into the url.Values the
// backend expects, keeping the original field names.
func fieldValues(clean map[string]any, names ...string) url.Values {
	vals := url.Values{}
	for _, n := range names {
		if v, ok := clean[n].(string); ok {
			vals.Set(n, v)
		}
	}
	return vals
}
