// internal/kv/kv.go
//
// Visitor-scoped key/value storage.
//
// Context
// -------
// The portal keeps a handful of tiny per-visitor values outside process
// memory: the post-login redirect target and the chat-widget open/closed
// flag.  This package defines the storage contract and two drivers, an
// in-memory map for single-instance dev and Redis for deployments that must
// survive restarts.
//
// Errors are returned, never swallowed, at this layer.  Callers that choose
// to ignore storage failures (the redirect store does, deliberately) make
// that decision visibly at their own call sites.
package kv

import (
	"context"
	"errors"
)

// Store is the visitor key/value contract.  All methods are safe for
// concurrent use.
type Store interface {
	// Set writes a value, overwriting any existing one.
	Set(ctx context.Context, key, val string) error

	// Get retrieves a value.  ok is false when the key is absent; that is
	// not an error.
	Get(ctx context.Context, key string) (val string, ok bool, err error)

	// Consume retrieves and deletes a value in one logical step.  ok is
	// false when the key is absent.
	Consume(ctx context.Context, key string) (val string, ok bool, err error)

	// Delete removes a key.  Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases driver resources.
	Close() error
}

// Common errors for store construction.
var (
	ErrInvalidConfig = errors.New("kv: invalid configuration")
	ErrInvalidDriver = errors.New("kv: invalid driver")
)
