// internal/config/model.go
//
// Typed configuration model for the FarmSathi portal.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   - optional `conf/.env`                       – dotenv values,
//   - `conf/portal.yaml`                         – primary static file,
//   - `FARMSATHI_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved through
// the Vault client *before* unmarshalling, so the model never stores Vault
// URIs, only plain strings.  That currently covers the identity-provider API
// key and the email-delivery public key.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`, not `yaml:"…"` — Koanf ignores `yaml` tags
//     unless configured otherwise.
//   - The `Paths` block is filled at runtime; YAML must not try to set it.
package config

//
// HTTP section
//

// HTTP holds web-server tunables.  MetricsAddr serves Prometheus on a
// separate listener so /metrics never rides the public vhost.
type HTTP struct {
	ListenAddr  string `koanf:"listen_addr"  validate:"required,hostname_port"`
	MetricsAddr string `koanf:"metrics_addr" validate:"required,hostname_port"`
	ForceHTTPS  bool   `koanf:"force_https"`
}

//
// Auth section
//

// Auth points at the external identity provider.  The API key is a secret
// and is normally written as `vault:secret/farmsathi#auth_api_key`.
type Auth struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	APIKey  string `koanf:"api_key"  validate:"required"`
}

//
// API section
//

// API configures the advisory backend (crop, fertilizer, disease, chatbot).
// AttachToken controls whether the visitor's identity token is forwarded as
// a bearer header on backend calls.
type API struct {
	BaseURL     string `koanf:"base_url" validate:"required,url"`
	AttachToken bool   `koanf:"attach_token"`
}

//
// Email section
//

// Email configures the third-party email-delivery collaborator used by the
// feedback and contact forms.  The public key is secret-valued.
type Email struct {
	Endpoint         string `koanf:"endpoint"          validate:"required,url"`
	ServiceID        string `koanf:"service_id"        validate:"required"`
	PublicKey        string `koanf:"public_key"        validate:"required"`
	FeedbackTemplate string `koanf:"feedback_template" validate:"required"`
	ContactTemplate  string `koanf:"contact_template"  validate:"required"`
}

//
// Store section
//

// Store selects the visitor key/value backend (redirect targets, chat
// open/closed flag).  "memory" suits single-instance dev; "redis" survives
// restarts and multi-instance deployments.
type Store struct {
	Driver    string `koanf:"driver" validate:"required,oneof=memory redis"`
	RedisAddr string `koanf:"redis_addr" validate:"required_if=Driver redis,omitempty,hostname_port"`
	RedisDB   int    `koanf:"redis_db"`
}

//
// Survey section
//

// Survey holds the embedded SQLite path for demo survey submissions.
type Survey struct {
	DBPath string `koanf:"db_path" validate:"required"`
}

//
// Ops section (optional)
//

// Ops seeds the ops_admin access list at boot.  Seeding is idempotent, so
// restating an existing grant is harmless; further grants and revokes happen
// at runtime through the /admins endpoint.
type Ops struct {
	Admins []string `koanf:"admins" validate:"omitempty,dive,email"`
}

//
// GeoIP section (optional)
//

// GeoIP points at a MaxMind City database.  When the path is empty, request
// logs simply omit the region hint.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or FARMSATHI_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP   HTTP   `koanf:"http"`
	Auth   Auth   `koanf:"auth"`
	API    API    `koanf:"api"`
	Email  Email  `koanf:"email"`
	Store  Store  `koanf:"store"`
	Survey Survey `koanf:"survey"`
	Ops    Ops    `koanf:"ops"`
	GeoIP  GeoIP  `koanf:"geoip"`
	Paths  Paths  `koanf:"-"` // not loaded from config files
}
