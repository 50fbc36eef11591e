package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockCache(t *testing.T, rows *sqlmock.Rows) (*AliasCache, sqlmock.Sqlmock) {
	t.Helper()

	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS route_alias").
		WillReturnResult(sqlmock.NewResult(0, 0))
	for range defaultAliases {
		mock.ExpectExec("INSERT OR IGNORE INTO route_alias").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectQuery("SELECT alias_path, target_path FROM route_alias").
		WillReturnRows(rows)

	db := sqlx.NewDb(raw, "sqlite")
	c, err := NewAliasCache(t.Context(), db, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewAliasCache: %v", err)
	}
	return c, mock
}

func TestLookupResolvesSeededAlias(t *testing.T) {
	rows := sqlmock.NewRows([]string{"alias_path", "target_path"}).
		AddRow("/crop.html", "/crop-recommend.html")
	c, _ := newMockCache(t, rows)

	target, ok := c.Lookup("/crop.html")
	if !ok || target != "/crop-recommend.html" {
		t.Fatalf("Lookup = %q, %v; want /crop-recommend.html, true", target, ok)
	}
	if _, ok := c.Lookup("/dashboard.html"); ok {
		t.Fatal("canonical path must not resolve as an alias")
	}
}

func TestMiddlewareRedirectsAlias(t *testing.T) {
	rows := sqlmock.NewRows([]string{"alias_path", "target_path"}).
		AddRow("/home.html", "/index.html")
	c, _ := newMockCache(t, rows)

	var hitNext bool
	h := Middleware(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitNext = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home.html", nil))

	if hitNext {
		t.Fatal("alias hit must not reach the next handler")
	}
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d; want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/index.html" {
		t.Fatalf("Location = %q; want /index.html", loc)
	}
}

func TestMiddlewarePassesCanonicalPath(t *testing.T) {
	rows := sqlmock.NewRows([]string{"alias_path", "target_path"}).
		AddRow("/home.html", "/index.html")
	c, _ := newMockCache(t, rows)

	var hitNext bool
	h := Middleware(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitNext = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))

	if !hitNext {
		t.Fatal("canonical path must fall through to the router")
	}
}
