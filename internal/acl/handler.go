// internal/acl/handler.go
//
// Admin-list management endpoint, mounted at /admins behind RequireAdmin.
//
// GET  /admins                         → {"admins": ["a@x", …]}
// POST /admins  action=grant  email=…  → 204
// POST /admins  action=revoke email=…  → 204

package acl

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// AdminHandler serves the ops_admin list over HTTP.  The caller is already
// an admin (RequireAdmin runs first), so a grant here is an admin adding a
// colleague, and the last admin can lock themselves out by revoking their
// own grant — the config seed list restores access on the next boot.
func AdminHandler(store *Store, log *zap.SugaredLogger) http.Handler {
	if log == nil {
		log = zap.S()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			emails, err := store.List(r.Context())
			if err != nil {
				log.Errorw("list ops admins", "err", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"admins": emails})

		case http.MethodPost:
			if err := r.ParseForm(); err != nil {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			email := r.PostFormValue("email")
			if email == "" {
				http.Error(w, "email required", http.StatusBadRequest)
				return
			}

			var err error
			switch action := r.PostFormValue("action"); action {
			case "grant":
				err = store.Grant(r.Context(), email)
			case "revoke":
				err = store.Revoke(r.Context(), email)
			default:
				http.Error(w, "action must be grant or revoke", http.StatusBadRequest)
				return
			}
			if err != nil {
				log.Errorw("update ops admins", "err", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		}
	})
}
