// internal/guard/guard_test.go
//
// Tests for the session × page state machine, both the pure Evaluate
// function and the middleware wiring against a memory-backed redirect slot.
//
// Run: go test ./internal/guard -v

package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farmsathi/portal/internal/authgw"
	"github.com/farmsathi/portal/internal/kv"
	"github.com/farmsathi/portal/internal/page"
	"github.com/farmsathi/portal/internal/redirect"
	"github.com/farmsathi/portal/internal/session"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name      string
		pg        page.Identity
		st        authgw.State
		current   string
		stored    string
		hasStored bool
		want      Decision
	}{
		{
			name: "anonymous on protected page prompts",
			pg:   page.Dashboard, st: authgw.StateAnonymous, current: "/dashboard.html",
			want: Decision{Action: ActionPrompt},
		},
		{
			name: "anonymous on open page passes",
			pg:   page.Index, st: authgw.StateAnonymous, current: "/index.html",
			want: Decision{Action: ActionNone},
		},
		{
			name: "authenticated with differing target navigates",
			pg:   page.Index, st: authgw.StateAuthenticated, current: "/index.html",
			stored: "/dashboard.html", hasStored: true,
			want: Decision{Action: ActionNavigate, Target: "/dashboard.html"},
		},
		{
			name: "authenticated with matching target stays put",
			pg:   page.Dashboard, st: authgw.StateAuthenticated, current: "/dashboard.html",
			stored: "/dashboard.html", hasStored: true,
			want: Decision{Action: ActionNone},
		},
		{
			name: "authenticated on index without target defaults to dashboard",
			pg:   page.Index, st: authgw.StateAuthenticated, current: "/index.html",
			want: Decision{Action: ActionNavigate, Target: "/dashboard.html"},
		},
		{
			name: "authenticated elsewhere without target passes",
			pg:   page.Survey, st: authgw.StateAuthenticated, current: "/survey.html",
			want: Decision{Action: ActionNone},
		},
		{
			name: "unknown state waits",
			pg:   page.Dashboard, st: authgw.StateUnknown, current: "/dashboard.html",
			want: Decision{Action: ActionNone},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.pg, tc.st, tc.current, tc.stored, tc.hasStored)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

//
// middleware wiring
//

func newGuardAndStore(t *testing.T) (*Guard, *redirect.Store) {
	t.Helper()
	backend, err := kv.New(kv.DriverMemory)
	if err != nil {
		t.Fatalf("kv.New: %v", err)
	}
	rs := redirect.NewStore(backend, nil)
	return New(rs, nil), rs
}

// get issues a request through session+guard middleware, optionally logged in.
func get(t *testing.T, g *Guard, path string, id *authgw.Identity, inner http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if id != nil {
		rec := httptest.NewRecorder()
		session.LoginUser(rec, req, *id)
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
	}

	rec := httptest.NewRecorder()
	session.Middleware(g.Middleware(inner)).ServeHTTP(rec, req)
	return rec
}

func TestAnonymousProtectedPageRecordsAndPrompts(t *testing.T) {
	g, rs := newGuardAndStore(t)

	var prompted bool
	rec := get(t, g, "/dashboard.html", nil, func(w http.ResponseWriter, r *http.Request) {
		prompted = PromptRequested(r.Context())
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("visitor must stay on the page, got %d", rec.Code)
	}
	if !prompted {
		t.Fatal("auth prompt must be requested")
	}

	// The target was persisted under the visitor cookie minted above.
	visitor := visitorCookie(t, rec)
	if got, ok := rs.ConsumeTarget(t.Context(), visitor); !ok || got != "/dashboard.html" {
		t.Fatalf("redirect target not recorded: (%q, %v)", got, ok)
	}
}

func TestAuthenticatedConsumesTargetAndNavigatesOnce(t *testing.T) {
	g, rs := newGuardAndStore(t)
	id := authgw.Identity{UID: "u1", Email: "f@x.com"}

	// Seed the slot the way the anonymous visit would have.
	seed := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	seedRec := httptest.NewRecorder()
	visitor := session.EnsureVisitor(seedRec, seed)
	rs.SetTarget(t.Context(), visitor, "/dashboard.html")

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	for _, c := range seedRec.Result().Cookies() {
		req.AddCookie(c)
	}
	loginRec := httptest.NewRecorder()
	session.LoginUser(loginRec, req, id)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	session.Middleware(g.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard.html" {
		t.Fatalf("expected /dashboard.html, got %q", loc)
	}

	// Second pass: slot consumed, now on the dashboard, no further redirect.
	req2 := httptest.NewRequest(http.MethodGet, "/dashboard.html", nil)
	for _, c := range seed.Cookies() {
		req2.AddCookie(c)
	}
	for _, c := range req.Cookies() {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	session.Middleware(g.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))).ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("redirect must fire exactly once, got %d on second pass", rec2.Code)
	}
}

func TestAuthenticatedIndexDefaultsToDashboard(t *testing.T) {
	g, _ := newGuardAndStore(t)
	id := authgw.Identity{UID: "u1"}

	rec := get(t, g, "/index.html", &id, func(http.ResponseWriter, *http.Request) {})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard.html" {
		t.Fatalf("expected default dashboard redirect, got %d %q",
			rec.Code, rec.Header().Get("Location"))
	}
}

func TestNonPageRoutesPassThrough(t *testing.T) {
	g, _ := newGuardAndStore(t)

	called := false
	rec := get(t, g, "/api/chatbot/message", nil, func(http.ResponseWriter, *http.Request) { called = true })
	if !called || rec.Code != http.StatusOK {
		t.Fatal("non-page routes must bypass the guard")
	}
}

// visitorCookie digs the minted visitor ID out of the recorder.
func visitorCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "farmsathi_visitor" {
			return c.Value
		}
	}
	t.Fatal("visitor cookie not set")
	return ""
}
