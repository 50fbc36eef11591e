// internal/redirect/store_test.go
//
// Unit-tests for the consume-once redirect slot, including the deliberate
// swallow of backend failures.
//
// Run: go test ./internal/redirect -v

package redirect

import (
	"context"
	"errors"
	"testing"

	"github.com/farmsathi/portal/internal/kv"
)

func TestConsumeTargetTwice(t *testing.T) {
	backend, _ := kv.New(kv.DriverMemory)
	s := NewStore(backend, nil)
	ctx := context.Background()

	s.SetTarget(ctx, "v1", "crop-recommend.html")

	got, ok := s.ConsumeTarget(ctx, "v1")
	if !ok || got != "crop-recommend.html" {
		t.Fatalf("first consume: got (%q, %v)", got, ok)
	}

	if _, ok := s.ConsumeTarget(ctx, "v1"); ok {
		t.Fatal("second consume must return nothing")
	}
}

func TestSetTargetOverwrites(t *testing.T) {
	backend, _ := kv.New(kv.DriverMemory)
	s := NewStore(backend, nil)
	ctx := context.Background()

	s.SetTarget(ctx, "v1", "survey.html")
	s.SetTarget(ctx, "v1", "dashboard.html")

	got, ok := s.ConsumeTarget(ctx, "v1")
	if !ok || got != "dashboard.html" {
		t.Fatalf("expected latest target, got (%q, %v)", got, ok)
	}
}

// failingStore errors on every call, standing in for an unreachable Redis.
type failingStore struct{}

func (failingStore) Set(context.Context, string, string) error { return errors.New("down") }
func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}
func (failingStore) Consume(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("down") }
func (failingStore) Close() error                         { return nil }

func TestBackendFailureIsSwallowed(t *testing.T) {
	s := NewStore(failingStore{}, nil)
	ctx := context.Background()

	// Neither call may panic or surface the backend error.
	s.SetTarget(ctx, "v1", "feedback.html")
	if _, ok := s.ConsumeTarget(ctx, "v1"); ok {
		t.Fatal("failing backend must read as empty")
	}
}

func TestEmptyVisitorIgnored(t *testing.T) {
	backend, _ := kv.New(kv.DriverMemory)
	s := NewStore(backend, nil)

	s.SetTarget(context.Background(), "", "dashboard.html")
	if _, ok := s.ConsumeTarget(context.Background(), ""); ok {
		t.Fatal("empty visitor ID must never hold a target")
	}
}
