// internal/message/message_test.go

package message

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPushPopRoundTrip(t *testing.T) {
	push := httptest.NewRecorder()
	Success(push, "Survey submitted.")

	req := httptest.NewRequest("GET", "/survey.html", nil)
	for _, c := range push.Result().Cookies() {
		req.AddCookie(c)
	}

	pop := httptest.NewRecorder()
	toast, ok := Pop(pop, req)
	if !ok || toast.Text != "Survey submitted." || toast.Kind != KindSuccess {
		t.Fatalf("toast = %+v, ok = %v", toast, ok)
	}

	// Pop must clear the cookie so the toast shows once.
	var cleared bool
	for _, c := range pop.Result().Cookies() {
		if c.Name == "farmsathi_toast" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("toast cookie must be cleared")
	}
}

func TestPopWithoutToast(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, ok := Pop(rec, httptest.NewRequest("GET", "/", nil)); ok {
		t.Fatal("expected no toast")
	}
}

func TestPopMangledCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "farmsathi_toast", Value: "%%%not-base64"})
	if _, ok := Pop(httptest.NewRecorder(), req); ok {
		t.Fatal("mangled cookie must not produce a toast")
	}
}

func TestErrorKind(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, "Failed to send email. Please try again later.")

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	toast, ok := Pop(httptest.NewRecorder(), req)
	if !ok || toast.Kind != KindError {
		t.Fatalf("toast = %+v", toast)
	}
}
