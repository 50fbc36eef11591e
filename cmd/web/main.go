// cmd/web/main.go
//
// FarmSathi portal – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load configuration (conf/.env → conf/portal.yaml → FARMSATHI_ env
//     overrides, Vault-resolved secrets).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Open the survey SQLite database and the visitor KV store (memory or
//     Redis, per config).
//
//  4. Build the collaborator clients: identity gateway, advisory backend,
//     email delivery, chat service.
//
//  5. Load YAML form definitions and point the view engine at the repo
//     root.
//
//  6. Assemble the router: request enrichment, security headers, legacy
//     alias redirects, session, route guard, then component routes, ops
//     modules, and static assets.
//
//  7. Serve, with Prometheus on its own listener and graceful shutdown on
//     SIGINT/SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/farmsathi/portal/internal/acl"
	"github.com/farmsathi/portal/internal/authgw"
	"github.com/farmsathi/portal/internal/chat"
	"github.com/farmsathi/portal/internal/component"
	"github.com/farmsathi/portal/internal/config"
	"github.com/farmsathi/portal/internal/database"
	"github.com/farmsathi/portal/internal/email"
	"github.com/farmsathi/portal/internal/form"
	"github.com/farmsathi/portal/internal/guard"
	"github.com/farmsathi/portal/internal/kv"
	"github.com/farmsathi/portal/internal/logger"
	"github.com/farmsathi/portal/internal/middleware"
	"github.com/farmsathi/portal/internal/module"
	"github.com/farmsathi/portal/internal/redirect"
	"github.com/farmsathi/portal/internal/remote"
	"github.com/farmsathi/portal/internal/requestinfo"
	"github.com/farmsathi/portal/internal/routing"
	"github.com/farmsathi/portal/internal/server"
	"github.com/farmsathi/portal/internal/session"
	"github.com/farmsathi/portal/internal/survey"
	"github.com/farmsathi/portal/internal/view"

	_ "github.com/farmsathi/portal/components/advisor"
	_ "github.com/farmsathi/portal/components/auth"
	_ "github.com/farmsathi/portal/components/chatbot"
	_ "github.com/farmsathi/portal/components/contact"
	_ "github.com/farmsathi/portal/components/home"
	_ "github.com/farmsathi/portal/components/survey"
	_ "github.com/farmsathi/portal/modules/debug" // ops module
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	//
	// ── 2.  Storage ─────────────────────────────────────────────────────
	//
	db, err := database.Open(cfg.Survey.DBPath)
	if err != nil {
		zlog.Fatalf("open survey db: %v", err)
	}
	defer db.Close()

	surveys, err := survey.NewStore(db)
	if err != nil {
		zlog.Fatalf("init survey store: %v", err)
	}

	aliases, err := routing.NewAliasCache(ctx, db, time.Hour, zlog)
	if err != nil {
		zlog.Fatalf("init alias cache: %v", err)
	}

	opsACL, err := acl.NewStore(db)
	if err != nil {
		zlog.Fatalf("init ops acl: %v", err)
	}
	for _, email := range cfg.Ops.Admins {
		if err := opsACL.Grant(ctx, email); err != nil {
			zlog.Fatalf("seed ops admin %s: %v", email, err)
		}
	}

	var kvOpts []kv.Option
	if cfg.Store.Driver == string(kv.DriverRedis) {
		kvOpts = append(kvOpts, kv.WithRedisClient(redis.NewClient(&redis.Options{
			Addr: cfg.Store.RedisAddr,
			DB:   cfg.Store.RedisDB,
		})))
	}
	store, err := kv.New(kv.Driver(cfg.Store.Driver), kvOpts...)
	if err != nil {
		zlog.Fatalf("init kv store: %v", err)
	}
	defer store.Close()

	//
	// ── 3.  Collaborators ───────────────────────────────────────────────
	//
	gw := authgw.New(cfg.Auth.BaseURL, cfg.Auth.APIKey, authgw.WithLogger(zlog))

	remoteOpts := []remote.Option{remote.WithLogger(zlog)}
	if cfg.API.AttachToken {
		// The token rides the request context, so each visitor's backend
		// calls carry their own credential.
		remoteOpts = append(remoteOpts, remote.WithTokenSource(func(ctx context.Context) string {
			if id, ok := session.FromContext(ctx); ok {
				return id.IDToken
			}
			return ""
		}))
	}
	backend := remote.New(cfg.API.BaseURL, remoteOpts...)

	mailer := email.New(cfg.Email.Endpoint, cfg.Email.ServiceID, cfg.Email.PublicKey,
		email.WithLogger(zlog))

	chatSvc := chat.NewService(backend, zlog)

	if cfg.GeoIP.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.GeoIP.DBPath); err != nil {
			zlog.Warnw("geoip disabled", "err", err)
		}
	}

	//
	// ── 4.  Views and forms ─────────────────────────────────────────────
	//
	view.Root = cfg.Paths.Root
	if err := form.RegisterForms(cfg.Paths.Root); err != nil {
		zlog.Fatalf("load form definitions: %v", err)
	}

	//
	// ── 5.  Components ──────────────────────────────────────────────────
	//
	redirects := redirect.NewStore(store, zlog)

	env := &component.Env{
		Config:    cfg,
		Log:       zlog,
		DB:        db,
		KV:        store,
		Redirects: redirects,
		Auth:      gw,
		Remote:    backend,
		Email:     mailer,
		Chat:      chatSvc,
		Surveys:   surveys,
	}

	r := chi.NewRouter()
	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security)
	if cfg.HTTP.ForceHTTPS {
		r.Use(middleware.ForceHTTPS)
	}
	r.Use(routing.Middleware(aliases))
	r.Use(session.Middleware)
	r.Use(guard.New(redirects, zlog).Middleware)

	for _, c := range component.All() {
		if ini, ok := c.(component.Initializer); ok {
			if err := ini.Init(env); err != nil {
				zlog.Fatalf("init component %s: %v", c.Name(), err)
			}
		}
		c.Routes(r)
		zlog.Infow("component mounted", "name", c.Name())
	}

	// Ops modules: exact-path handlers outside the component system, gated
	// to the ops_admin list.
	ops := r.With(acl.RequireAdmin(opsACL, zlog))
	for path, h := range module.All() {
		ops.HandleFunc(path, http.HandlerFunc(h))
	}
	ops.Handle("/admins", acl.AdminHandler(opsACL, zlog))

	// Static assets.
	assets := http.FileServer(http.Dir(filepath.Join(cfg.Paths.Root, "assets")))
	r.Handle("/assets/*", http.StripPrefix("/assets/", assets))

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	web := server.New(cfg.HTTP.ListenAddr, r)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.HTTP.MetricsAddr, Handler: metricsMux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Infow("portal listening", "addr", cfg.HTTP.ListenAddr)
		if err := web.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		zlog.Infow("metrics listening", "addr", cfg.HTTP.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutCtx)
		return web.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		zlog.Fatalf("server exited: %v", err)
	}
	zlog.Infow("shutdown complete")
}
