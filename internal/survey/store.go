// internal/survey/store.go
//
// Survey submissions.  The survey page is a demo form; submissions stay on
// the device in an embedded SQLite file rather than going to the advisory
// backend.  Each row keeps the visitor that submitted it so the page can
// show that visitor's recent entries.

package survey

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS survey_submissions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    visitor_id  TEXT    NOT NULL,
    farm_size   TEXT    NOT NULL,
    crop_types  TEXT    NOT NULL,
    irrigation  TEXT    NOT NULL,
    challenges  TEXT    NOT NULL,
    created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_survey_visitor ON survey_submissions (visitor_id, created_at);
`

// Submission is one saved survey entry.
type Submission struct {
	ID         int64     `db:"id"`
	VisitorID  string    `db:"visitor_id"`
	FarmSize   string    `db:"farm_size"`
	CropTypes  string    `db:"crop_types"`
	Irrigation string    `db:"irrigation"`
	Challenges string    `db:"challenges"`
	CreatedAt  time.Time `db:"created_at"`
}

// Store persists survey submissions.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps db and ensures the schema exists.
func NewStore(db *sqlx.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("survey: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save records one submission, stamping it with the current time.
func (s *Store) Save(ctx context.Context, sub *Submission) error {
	sub.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO survey_submissions
		   (visitor_id, farm_size, crop_types, irrigation, challenges, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.VisitorID, sub.FarmSize, sub.CropTypes, sub.Irrigation, sub.Challenges, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("survey: save submission: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		sub.ID = id
	}
	return nil
}

// Recent returns the visitor's latest submissions, newest first.
func (s *Store) Recent(ctx context.Context, visitorID string, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []Submission
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, visitor_id, farm_size, crop_types, irrigation, challenges, created_at
		   FROM survey_submissions
		  WHERE visitor_id = ?
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`,
		visitorID, limit)
	if err != nil {
		return nil, fmt.Errorf("survey: list submissions: %w", err)
	}
	return out, nil
}
