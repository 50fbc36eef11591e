// internal/acl/store.go
//
// Ops access control.
//
// Context
// -------
// The ops endpoints (/debug and friends) expose request internals and must
// not be reachable by ordinary visitors.  Access is granted to specific
// account emails, stored in the ops_admin table next to the survey data.
// The list is seeded from the ops.admins config block at boot and managed
// at runtime through the /admins endpoint (see handler.go).  The table is
// tiny and queried per request; callers may wrap the result in their own
// cache if that ever shows up in a profile.

package acl

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS ops_admin (
	email TEXT PRIMARY KEY
)`

// Store answers admin-membership questions.
type Store struct {
	db *sqlx.DB
}

// NewStore creates the ops_admin table if needed.
func NewStore(db *sqlx.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Grant adds an admin email.  Granting an existing admin is a no-op.
func (s *Store) Grant(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO ops_admin (email) VALUES (?)`,
		normalize(email))
	return err
}

// Revoke removes an admin email.
func (s *Store) Revoke(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM ops_admin WHERE email = ?`, normalize(email))
	return err
}

// List returns every granted email in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var emails []string
	err := s.db.SelectContext(ctx, &emails,
		`SELECT email FROM ops_admin ORDER BY email`)
	return emails, err
}

// IsAdmin reports whether email is on the admin list.
func (s *Store) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = normalize(email)
	if email == "" {
		return false, nil
	}
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM ops_admin WHERE email = ?`, email)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
