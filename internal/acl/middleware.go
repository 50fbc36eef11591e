// internal/acl/middleware.go
//
// Chi middleware guarding the ops endpoints.

package acl

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/session"
)

// RequireAdmin allows only authenticated sessions whose email is on the
// ops_admin list.  Anonymous requests get 401, known users without the
// grant get 403; lookup failures fail closed.
func RequireAdmin(store *Store, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.S()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := session.FromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			admin, err := store.IsAdmin(r.Context(), id.Email)
			if err != nil {
				log.Errorw("ops admin lookup", "err", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !admin {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
