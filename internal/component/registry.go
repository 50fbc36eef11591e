// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  main() hands every component
// the shared router via Routes(r) and, before that, invokes Init() when the
// component implements the Initializer interface.

package component

import (
	"sync"

	"github.com/go-chi/chi/v5"
)

// Initializer is optional.  If a Component implements it, main() calls
// Init(env) once during bootstrap, before routes are mounted.
type Initializer interface {
	Init(*Env) error
}

// Component contract.
//
// Routes(r) should register BOTH page and API endpoints on the shared
// router, e.g:
//
//	r.Get("/login.html", getLogin)
//	r.Route("/api/auth", func(api chi.Router) { ... })
//
// Pages keep the original flat ".html" paths, so components register at the
// top level rather than under a per-component prefix.
type Component interface {
	Name() string
	Routes(r chi.Router)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component in arbitrary order.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	return out
}
