// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Render         – write rendered HTML to an http.ResponseWriter.
//   - RenderToString – return template.HTML (widgets, e-mails).
//
// Lookup precedence (first hit wins):
//   1. themes/<theme>/components/<comp>/templates/<tpl>.html
//   2. components/<comp>/templates/<tpl>.html
//
// All templates in the same directory are parsed as one set so sub-templates
// ({{ template "row" . }}) work out-of-the-box.  Partials under
// components/shared/templates/ are parsed into every set.
//
// execName() chooses the best template to execute:
//   – If the set contains "<name>.html", we run that (file has no define).
//   – Else we fall back to "<name>" (root template defined via {{ define }}).
// Callers pass the logical name (e.g. "login"); view.Render figures out the
// concrete template automatically.

package view

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/farmsathi/portal/internal/cache"
	"github.com/farmsathi/portal/internal/viewhelpers"
	"github.com/farmsathi/portal/internal/widget"
)

//
// cache definitions
//

// CachePolicy hints how the caller wants this template cached.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // obey global TTL
	CacheSkip                       // never cache
)

// Parsed template sets; tweak capacity when perf-testing.
var tmplLRU = cache.New(256)

// Root is the directory holding themes/ and components/.  Set once from
// main() before the first render.
var Root = "."

// Theme names the active layout directory under themes/.
var Theme = "default"

//
// public helpers
//

// Render executes the template set and streams it to w.
//
// We first load (or parse) the appropriate template set, then execute the
// concrete template determined by execName().  This allows both:
//
//   - A simple file "crop.html" with no {{ define }} block.  In that case
//     execName runs "crop.html" automatically.
//   - A file that wraps markup in {{ define "crop" }} … {{ end }} and relies
//     on that root template name.
func Render(w http.ResponseWriter, comp, name string, data any, policy CachePolicy) error {
	t, err := load(comp, name, policy)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, execName(t, name), data)
}

// RenderToString executes and returns HTML (used by widgets and e-mail
// generators).  It mirrors Render, but writes to a buffer instead of w.
func RenderToString(comp, name string, data any) (template.HTML, error) {
	t, err := load(comp, name, CacheDefault)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

//
// internal: load
//

// load finds and (if necessary) parses the template set for the given
// component and base name, obeying the provided cache policy.
func load(comp, name string, policy CachePolicy) (*template.Template, error) {
	key := strings.Join([]string{Theme, comp, name}, "::")

	if policy != CacheSkip {
		if v, ok := tmplLRU.Get(key); ok {
			return v.(*template.Template), nil
		}
	}

	paths := []string{
		filepath.Join(Root, "themes", Theme, "components", comp, "templates", name+".html"),
		filepath.Join(Root, "components", comp, "templates", name+".html"),
	}

	var base string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			base = p
			break
		}
	}
	if base == "" {
		return nil, os.ErrNotExist
	}

	// Parse all *.html in the same directory so sub-templates work.
	dir := filepath.Dir(base)
	pattern := filepath.Join(dir, "*.html")

	t := template.New(name).Funcs(buildFuncMap())

	// Shared partials (site nav, auth modal, footer) join every set so page
	// templates stay lean.
	if shared, _ := filepath.Glob(filepath.Join(Root, "components", "shared", "templates", "*.html")); len(shared) > 0 {
		var err error
		if t, err = t.ParseFiles(shared...); err != nil {
			return nil, err
		}
	}

	t, err := t.ParseGlob(pattern)
	if err != nil {
		return nil, err
	}

	if policy != CacheSkip {
		tmplLRU.Add(key, t)
	}
	return t, nil
}

//
// func-map builders
//

// buildFuncMap returns the shared helper set.  Helpers needing request
// state (widget, the UA funcs) take it as an explicit argument so parsed
// sets stay cacheable across requests.
func buildFuncMap() template.FuncMap {
	fm := template.FuncMap{
		"dict":   dict,
		"widget": widgetFunc,
	}
	for k, v := range viewhelpers.FuncMap() { // UA helpers (browser/os parsing)
		fm[k] = v
	}
	return fm
}

//
// helpers
//

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil {
		return name + ".html"
	}
	return name
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// widgetFunc renders a registered widget and returns safe HTML.  Templates
// pass the live request: {{ widget .Req "chatbot/panel" (dict "open" true) }}.
// Errors are hidden behind <!-- comments --> so end-users never see stack
// traces.
func widgetFunc(r *http.Request, key string, params map[string]any) template.HTML {
	w := widget.Lookup(key)
	if w == nil {
		return template.HTML("<!-- widget not found -->")
	}
	html, err := w.Render(r, params)
	if err != nil {
		return template.HTML("<!-- widget error -->")
	}
	return html
}
