// internal/module/registry.go
//
// A super-light registry for ops endpoints: modules call
// Register(path, handler) in an init() function.  main() mounts each exact
// URL path (no wildcards) on the router.  Components own the user-facing
// pages; modules are for diagnostics and tooling that need no template or
// dependency wiring.
package module

import (
	"net/http"
	"sync"
)

// Handler is what modules register.
type Handler func(http.ResponseWriter, *http.Request)

var (
	mu       sync.RWMutex
	registry = map[string]Handler{}
)

// Register is called from module init() functions.
func Register(path string, h Handler) {
	mu.Lock()
	registry[path] = h
	mu.Unlock()
}

// Lookup returns the handler for an exact path or nil.
func Lookup(path string) Handler {
	mu.RLock()
	defer mu.RUnlock()
	return registry[path]
}

// All returns a copy of the path → handler table for mounting.
func All() map[string]Handler {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]Handler, len(registry))
	for p, h := range registry {
		out[p] = h
	}
	return out
}
