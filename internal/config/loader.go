// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env` dotenv file.
  2. `conf/portal.yaml`.
  3. Environment variables prefixed `FARMSATHI_`, where `__` maps to “.”
     (e.g., `FARMSATHI_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, every leaf value beginning with `vault:` is swapped for the
secret it names, the tree is unmarshalled into strongly-typed structs,
validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Vault references use the form `vault:<mount>/<path>#<key>`.  The Vault
client is only constructed when at least one reference is present, so dev
setups without Vault keep working by putting literal values in `.env`.

Notes
-----
  - `rootDir()` climbs the cwd tree until it finds `conf/portal.yaml`; this
    lets `go run ./cmd/web` work from any sub-directory.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/vault"
)

const (
	envPrefix     = "FARMSATHI_"
	vaultPrefix   = "vault:"
	vaultCacheTTL = 5 * time.Minute
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves FARMSATHI_ROOT or climbs directories until
// conf/portal.yaml is found.  Falls back to the executable heuristic for the
// production layout (<root>/bin/web).
func rootDir() string {
	if r := os.Getenv("FARMSATHI_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "portal.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches the Config.
func Load(ctx context.Context) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "portal.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	// Env overrides: FARMSATHI_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"api_base", cfg.API.BaseURL,
		"store_driver", cfg.Store.Driver,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────── vault reference resolution ──────────────────────*/

// resolveSecrets replaces every `vault:mount/path#key` leaf with the secret
// value.  The Vault client is built lazily on first reference.
func resolveSecrets(ctx context.Context, k *koanf.Koanf) error {
	var cli *vault.Client

	for _, key := range k.Keys() {
		raw, ok := k.Get(key).(string)
		if !ok || !strings.HasPrefix(raw, vaultPrefix) {
			continue
		}

		ref := strings.TrimPrefix(raw, vaultPrefix)
		path, field, found := strings.Cut(ref, "#")
		if !found || path == "" || field == "" {
			return fmt.Errorf("config key %s: malformed vault reference %q", key, raw)
		}

		if cli == nil {
			var err error
			if cli, err = vault.New(ctx, zap.S()); err != nil {
				return fmt.Errorf("config key %s: %w", key, err)
			}
		}

		val, err := cli.GetKV(ctx, path, field, vaultCacheTTL)
		if err != nil {
			return fmt.Errorf("config key %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config                    { return current.Load() }
func Reload(ctx context.Context) error { _, err := Load(ctx); return err }
