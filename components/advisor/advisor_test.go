// components/advisor/advisor_test.go
//
// End-to-end tests for the crop and disease tools: chi router + session
// middleware + a fake advisory backend, rendering the real templates.
//
// Run: go test ./components/advisor -v

package advisor

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/component"
	"github.com/farmsathi/portal/internal/form"
	"github.com/farmsathi/portal/internal/remote"
	"github.com/farmsathi/portal/internal/session"
	"github.com/farmsathi/portal/internal/view"
)

func registerCropForm(t *testing.T) {
	t.Helper()
	form.Register(&form.FormDef{
		ID: "advisor/crop",
		Fields: []form.FieldDef{
			{Name: "N", Label: "Nitrogen (N)", Type: "number", Required: true},
			{Name: "P", Label: "Phosphorus (P)", Type: "number", Required: true},
			{Name: "K", Label: "Potassium (K)", Type: "number", Required: true},
			{Name: "temperature", Label: "Temperature", Type: "number", Required: true},
			{Name: "humidity", Label: "Humidity", Type: "number", Required: true},
			{Name: "ph", Label: "Soil pH", Type: "number", Required: true},
			{Name: "rainfall", Label: "Rainfall", Type: "number", Required: true},
		},
	})
}

func newRouter(t *testing.T, backend http.HandlerFunc) http.Handler {
	t.Helper()
	registerCropForm(t)

	// Templates resolve relative to the repo root, not the package dir.
	prevRoot := view.Root
	view.Root = "../.."
	t.Cleanup(func() { view.Root = prevRoot })

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	c := &Component{}
	if err := c.Init(&component.Env{
		Log:    zap.NewNop().Sugar(),
		Remote: remote.New(srv.URL),
	}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	r := chi.NewRouter()
	r.Use(session.Middleware)
	c.Routes(r)
	return r
}

func signedCropForm(t *testing.T) url.Values {
	t.Helper()
	tok, err := form.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	v := url.Values{}
	v.Set("csrf_token", tok)
	v.Set("render_ts", strconv.FormatInt(time.Now().Add(-5*time.Second).UnixMicro(), 10))
	for field, val := range map[string]string{
		"N": "90", "P": "42", "K": "43",
		"temperature": "21", "humidity": "82", "ph": "6.5", "rainfall": "203",
	} {
		v.Set(field, val)
	}
	return v
}

func postCrop(h http.Handler, v url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/crop-recommend.html", strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCropSubmitRendersRecommendation(t *testing.T) {
	var gotField string
	h := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			gotField = r.FormValue("N")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"recommended_crop": "rice"})
	})

	rec := postCrop(h, signedCropForm(t))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if gotField != "90" {
		t.Fatalf("backend received N = %q; want 90", gotField)
	}
	if !strings.Contains(rec.Body.String(), "Recommended Crop: rice") {
		t.Fatal("result panel missing from rendered page")
	}
}

func TestCropSubmitBackendFailureShowsStaticMessage(t *testing.T) {
	h := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	rec := postCrop(h, signedCropForm(t))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 with inline error", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to get crop recommendation") {
		t.Fatal("backend failure message missing from rendered page")
	}
}

func TestCropSubmitValidationFailureRerenders(t *testing.T) {
	h := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called on validation failure")
	})

	v := signedCropForm(t)
	v.Del("rainfall")
	rec := postCrop(h, v)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 re-render", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please fill all required fields.") {
		t.Fatal("required-field message missing from rendered page")
	}
}

// postDisease builds a multipart upload with a minimal PNG payload plus the
// given extra fields.
func postDisease(t *testing.T, h http.Handler, extra map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	part, err := mw.CreateFormFile("leafImage", "leaf.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a})
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/disease-detect.html", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signedFields(t *testing.T) map[string]string {
	t.Helper()
	tok, err := form.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return map[string]string{
		"csrf_token": tok,
		"render_ts":  strconv.FormatInt(time.Now().Add(-5*time.Second).UnixMicro(), 10),
	}
}

func TestDiseaseSubmitRendersDetection(t *testing.T) {
	var gotFile string
	h := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			if _, hdr, err := r.FormFile("file"); err == nil {
				gotFile = hdr.Filename
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"predicted_disease": "Leaf Rust"})
	})

	rec := postDisease(t, h, signedFields(t))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if gotFile != "leaf.png" {
		t.Fatalf("backend received file %q; want leaf.png", gotFile)
	}
	if !strings.Contains(rec.Body.String(), "Detected: Leaf Rust") {
		t.Fatal("result panel missing from rendered page")
	}
}

// An upload posted without a security token must never reach the backend.
func TestDiseaseSubmitWithoutTokenSkipsBackend(t *testing.T) {
	h := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called without a security token")
	})

	rec := postDisease(t, h, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 re-render", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Security token invalid.") {
		t.Fatal("security message missing from rendered page")
	}
}

func TestDiseaseSubmitStaleFormSkipsBackend(t *testing.T) {
	h := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called for an expired form")
	})

	fields := signedFields(t)
	fields["render_ts"] = strconv.FormatInt(time.Now().Add(-31*time.Minute).UnixMicro(), 10)
	rec := postDisease(t, h, fields)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 re-render", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Form expired.") {
		t.Fatal("expiry message missing from rendered page")
	}
}

func TestCropPageRenders(t *testing.T) {
	h := newRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/crop-recommend.html", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Crop Recommendation") {
		t.Fatal("page title missing")
	}
}
