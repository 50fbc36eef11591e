// internal/widget/registry.go
//
// Widget registry and lookup helpers.
//
// A **Widget** is a reusable view fragment rendered inside a page.  Each
// concrete widget lives under its component folder
// (`components/<comp>/widgets/<name>.go`) and registers itself by calling
// `widget.Register(&MyWidget{})` in an init() func.
//
// The key used for registration is `<component>/<widget>` – e.g.
// "chatbot/panel" – and must be returned by the widget’s `ID` method.
//
// Template authors can embed a widget with:
//
//	{{ widget "chatbot/panel" (dict "open" true) }}
//
// Params are optional.  The helper looks up the widget, invokes
// `Render`, and returns `template.HTML`.
package widget

import (
	"html/template"
	"net/http"
	"sync"
)

// Widget represents a view fragment that can be embedded inside any page
// template.  Render receives the live request so the fragment can read
// session, visitor, and request-info context values.
//
// Implementations should treat missing params defensively (nil map).
//
// Errors should be returned, not written to http.ResponseWriter, so the
// calling helper can decide how to surface the failure.
//
// Render MUST be concurrency-safe; multiple goroutines may call it.
type Widget interface {
	ID() string
	Render(r *http.Request, params map[string]any) (template.HTML, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Widget{}
)

// Register a widget during init().  If a duplicate key is registered the
// latter entry overwrites the former.
func Register(w Widget) {
	mu.Lock()
	registry[w.ID()] = w
	mu.Unlock()
}

// Lookup returns the widget or nil.
func Lookup(key string) Widget {
	mu.RLock()
	defer mu.RUnlock()
	return registry[key]
}

// All returns a copy of the registry slice – useful for tests.
func All() []Widget {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Widget, 0, len(registry))
	for _, w := range registry {
		out = append(out, w)
	}
	return out
}
