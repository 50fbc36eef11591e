// internal/routing/alias.go
//
// Legacy-path alias cache and middleware.
//
// Context
// -------
// The portal inherited flat ".html" paths from the original static site, and
// older links and bookmarks use shorter spellings ("/crop.html") that the
// page enum does not know.  Aliases live in the route_alias table next to the
// survey data, are cached in memory with a TTL, and resolve with a permanent
// redirect so the canonical path ends up in the address bar and the route
// guard sees only enum paths.
//
// Workflow
// --------
//  1. main() constructs the cache via routing.NewAliasCache() and seeds the
//     table with the known legacy spellings.
//  2. routing.Middleware(cache) sits before the session middleware; on a hit
//     it answers 301 and never reaches the router.

package routing

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS route_alias (
	alias_path  TEXT PRIMARY KEY,
	target_path TEXT NOT NULL
)`

// defaultAliases are the legacy spellings from the original static site.
// Seeding is idempotent; operators may add rows of their own.
var defaultAliases = map[string]string{
	"/home.html":       "/index.html",
	"/crop.html":       "/crop-recommend.html",
	"/fertilizer.html": "/fertilizer-recommend.html",
	"/disease.html":    "/disease-detect.html",
}

// AliasCache stores alias→target pairs with TTL-based refresh.  Zero value
// is unusable; construct with NewAliasCache.
type AliasCache struct {
	mu       sync.RWMutex
	data     map[string]string
	loadedAt time.Time
	ttl      time.Duration
	db       *sqlx.DB
	log      *zap.SugaredLogger
}

// NewAliasCache creates the table, seeds the default aliases, and returns a
// loaded cache.
func NewAliasCache(ctx context.Context, db *sqlx.DB, ttl time.Duration, log *zap.SugaredLogger) (*AliasCache, error) {
	if log == nil {
		log = zap.S()
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, err
	}
	for alias, target := range defaultAliases {
		if _, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO route_alias (alias_path, target_path) VALUES (?, ?)`,
			alias, target); err != nil {
			return nil, err
		}
	}

	c := &AliasCache{data: map[string]string{}, db: db, ttl: ttl, log: log}
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Load refreshes all aliases from route_alias.
func (c *AliasCache) Load(ctx context.Context) error {
	rows, err := c.db.QueryContext(ctx, `SELECT alias_path, target_path FROM route_alias`)
	if err != nil {
		return err
	}
	defer rows.Close()

	fresh := make(map[string]string)
	for rows.Next() {
		var alias, target string
		if err := rows.Scan(&alias, &target); err != nil {
			return err
		}
		fresh[alias] = target
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.data = fresh
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.log.Debugw("alias cache load", "count", len(fresh))
	return nil
}

// Lookup resolves path to its canonical target.  A stale cache still
// answers; refresh happens in the middleware so lookups never block on the
// database.
func (c *AliasCache) Lookup(path string) (string, bool) {
	c.mu.RLock()
	target, ok := c.data[path]
	c.mu.RUnlock()
	return target, ok
}

func (c *AliasCache) stale() bool {
	c.mu.RLock()
	stale := time.Since(c.loadedAt) > c.ttl
	c.mu.RUnlock()
	return stale
}

// Middleware redirects legacy paths to their canonical spelling.
func Middleware(c *AliasCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c.stale() {
				if err := c.Load(r.Context()); err != nil {
					c.log.Warnw("alias cache reload failed", "err", err)
				}
			}

			if target, ok := c.Lookup(r.URL.Path); ok {
				c.log.Debugw("alias redirect", "from", r.URL.Path, "to", target)
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
