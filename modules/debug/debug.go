// modules/debug/debug.go
//
// Demo module that echoes request metadata, session state, and visitor ID.
package debug

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/farmsathi/portal/internal/module"
	"github.com/farmsathi/portal/internal/requestinfo"
	"github.com/farmsathi/portal/internal/session"
)

func init() {
	// Register at exact path /debug
	module.Register("/debug", handler)
}

// handler writes a JSON blob with selected context fields.
func handler(w http.ResponseWriter, r *http.Request) {
	sess := session.SessionFromContext(r.Context())

	out := map[string]any{
		"path":    r.URL.Path,
		"query":   r.URL.RawQuery,
		"ip":      clientIP(r),
		"ua":      r.UserAgent(),
		"visitor": session.VisitorFromContext(r.Context()),
		"session": sess.State.String(),
		"user":    sess.Identity.Label(),
	}
	if ri := requestinfo.FromContext(r.Context()); ri != nil {
		out["ua_parsed"] = ri.UA
		out["geo"] = ri.Geo
		out["lang"] = ri.PrimaryLang
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

// clientIP grabs the remote address without port.
func clientIP(r *http.Request) string {
	h, _, _ := net.SplitHostPort(r.RemoteAddr)
	return h
}
