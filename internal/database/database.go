// Package database centralises sqlx connection helpers.  The portal keeps
// its demo data (survey submissions) in an embedded SQLite file, so the
// default driver is modernc.org/sqlite — pure Go, no cgo toolchain needed.
//
// Public entry points:
//
//	Open(path)                   – quick helper with conservative pool sizes.
//	OpenWithOptions(path, maxOpen, maxIdle) – fine-grained control.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open returns a *sqlx.DB with sane defaults: 1 max open (SQLite writes
// are single-writer), 1 idle, and a 30-minute connection lifetime.
func Open(path string) (*sqlx.DB, error) {
	return OpenWithOptions(path, 1, 1)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle per pool.
func OpenWithOptions(path string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
