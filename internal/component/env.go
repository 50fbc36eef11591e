// internal/component/env.go
package component

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/authgw"
	"github.com/farmsathi/portal/internal/chat"
	"github.com/farmsathi/portal/internal/config"
	"github.com/farmsathi/portal/internal/email"
	"github.com/farmsathi/portal/internal/kv"
	"github.com/farmsathi/portal/internal/redirect"
	"github.com/farmsathi/portal/internal/remote"
	"github.com/farmsathi/portal/internal/survey"
)

// Env exposes process-wide resources to components during Init.  It is
// assembled once in main() and shared read-only afterwards.
type Env struct {
	Config    *config.Config
	Log       *zap.SugaredLogger
	DB        *sqlx.DB
	KV        kv.Store
	Redirects *redirect.Store
	Auth      *authgw.Gateway
	Remote    *remote.Client
	Email     *email.Client
	Chat      *chat.Service
	Surveys   *survey.Store
}
