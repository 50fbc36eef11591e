// internal/authgw/subject.go
//
// Session state and its observable Subject.
//
// Context
// -------
// The gateway is the sole writer of the process-wide Session value.  Other
// parts of the portal (metrics, structured logging, tests) observe it
// through an explicit typed Subject rather than an implicit global listener,
// so fake transitions can be injected without a live identity provider.
//
// Subscribe invokes the callback once, immediately, with the current
// session, then again on every Publish.  Callbacks run synchronously on the
// publishing goroutine; keep them short.
package authgw

import "sync"

// State is the coarse session state the guard machine runs on.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Identity describes an authenticated user.  IDToken is the provider token
// optionally forwarded to the advisory backend.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	IDToken     string
}

// Label returns the greeting text: display name when set, else email.
func (id Identity) Label() string {
	if id.DisplayName != "" {
		return id.DisplayName
	}
	return id.Email
}

// Session is either anonymous or carries an Identity.
type Session struct {
	State    State
	Identity Identity
}

// Anonymous returns the signed-out session value.
func Anonymous() Session { return Session{State: StateAnonymous} }

// Authenticated wraps an identity in a session value.
func Authenticated(id Identity) Session {
	return Session{State: StateAuthenticated, Identity: id}
}

// Subject is a minimal typed observable for Session values.
type Subject struct {
	mu   sync.Mutex
	cur  Session
	next int
	subs map[int]func(Session)
}

// NewSubject starts in StateUnknown; the gateway publishes the first real
// state during boot.
func NewSubject() *Subject {
	return &Subject{subs: make(map[int]func(Session))}
}

// Current returns the last published session.
func (s *Subject) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Subscribe registers cb and invokes it immediately with the current
// session.  The returned function unsubscribes; calling it twice is safe.
func (s *Subject) Subscribe(cb func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = cb
	cur := s.cur
	s.mu.Unlock()

	cb(cur)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Publish records the new session and notifies every subscriber.
func (s *Subject) Publish(sess Session) {
	s.mu.Lock()
	s.cur = sess
	cbs := make([]func(Session), 0, len(s.subs))
	for _, cb := range s.subs {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		cb(sess)
	}
}
