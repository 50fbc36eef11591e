// internal/redirect/store.go
//
// Post-login redirect slot.
//
// Context
// -------
// When an anonymous visitor lands on a protected page, the guard records
// where they were headed so the auth flow can send them back afterwards.
// The slot is keyed by visitor ID, holds at most one pending target, and is
// consume-once: reading it clears it.
//
// Storage failures are swallowed here on purpose.  A broken Redis must never
// block a sign-in; the worst outcome is that the visitor lands on the
// dashboard instead of the page they asked for.  The underlying kv.Store
// still reports errors, so the ignore decision stays visible (and testable)
// at this layer rather than being buried in the driver.
package redirect

import (
	"context"

	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/kv"
)

const keyPrefix = "redirect:"

// Store wraps a kv.Store with redirect-slot semantics.
type Store struct {
	kv  kv.Store
	log *zap.SugaredLogger
}

// NewStore returns a redirect Store over the given backend.
func NewStore(backend kv.Store, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.S()
	}
	return &Store{kv: backend, log: log}
}

// SetTarget records the path to visit after authentication, overwriting any
// pending target.  Persistence failures are logged and ignored.
func (s *Store) SetTarget(ctx context.Context, visitorID, path string) {
	if visitorID == "" || path == "" {
		return
	}
	if err := s.kv.Set(ctx, keyPrefix+visitorID, path); err != nil {
		s.log.Debugw("redirect target not persisted", "visitor", visitorID, "err", err)
	}
}

// ConsumeTarget returns the pending target and clears it.  ok is false when
// no target is pending or the backend failed; both degrade to the default
// destination.
func (s *Store) ConsumeTarget(ctx context.Context, visitorID string) (string, bool) {
	if visitorID == "" {
		return "", false
	}
	val, ok, err := s.kv.Consume(ctx, keyPrefix+visitorID)
	if err != nil {
		s.log.Debugw("redirect target not readable", "visitor", visitorID, "err", err)
		return "", false
	}
	return val, ok
}
