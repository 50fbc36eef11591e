// internal/authgw/subject_test.go
//
// Unit-tests for the typed session observable.

package authgw

import "testing"

func TestSubscribeInvokesImmediately(t *testing.T) {
	s := NewSubject()
	s.Publish(Anonymous())

	var got []State
	unsub := s.Subscribe(func(sess Session) { got = append(got, sess.State) })
	defer unsub()

	if len(got) != 1 || got[0] != StateAnonymous {
		t.Fatalf("expected immediate callback with current state, got %v", got)
	}
}

func TestPublishNotifiesAllSubscribers(t *testing.T) {
	s := NewSubject()

	var a, b int
	defer s.Subscribe(func(Session) { a++ })()
	defer s.Subscribe(func(Session) { b++ })()

	s.Publish(Authenticated(Identity{UID: "u1", Email: "farmer@example.com"}))

	// One immediate call each plus one publish.
	if a != 2 || b != 2 {
		t.Fatalf("expected 2 calls each, got a=%d b=%d", a, b)
	}
	if cur := s.Current(); cur.State != StateAuthenticated || cur.Identity.UID != "u1" {
		t.Fatalf("Current out of sync: %+v", cur)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := NewSubject()

	var n int
	unsub := s.Subscribe(func(Session) { n++ })
	unsub()
	unsub() // double-unsubscribe is a no-op

	s.Publish(Anonymous())
	if n != 1 {
		t.Fatalf("expected only the immediate call, got %d", n)
	}
}

func TestIdentityLabel(t *testing.T) {
	if got := (Identity{DisplayName: "Kishor", Email: "k@x.com"}).Label(); got != "Kishor" {
		t.Fatalf("display name should win, got %q", got)
	}
	if got := (Identity{Email: "k@x.com"}).Label(); got != "k@x.com" {
		t.Fatalf("email fallback, got %q", got)
	}
}
