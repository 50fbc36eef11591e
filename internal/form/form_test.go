// internal/form/form_test.go
//
// Run: go test ./internal/form -v

package form

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }

func registerTestForm(t *testing.T) {
	t.Helper()
	Register(&FormDef{
		ID: "test/contact",
		Fields: []FieldDef{
			{Name: "contactName", Label: "Name", Type: "text", Required: true, MaxLength: 100},
			{Name: "contactEmail", Label: "Email", Type: "email", Required: true},
			{Name: "contactPhone", Label: "Phone", Type: "tel"},
			{Name: "ph", Label: "Soil pH", Type: "number", Min: floatPtr(0), Max: floatPtr(14)},
		},
	})
}

// validPost returns a base submission that passes CSRF and timing checks.
func validPost(t *testing.T) url.Values {
	t.Helper()
	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return url.Values{
		"csrf_token": {tok},
		"render_ts":  {strconv.FormatInt(time.Now().Add(-5*time.Second).UnixMicro(), 10)},
	}
}

func TestValidateFormHappyPath(t *testing.T) {
	registerTestForm(t)
	posted := validPost(t)
	posted.Set("contactName", "Asha")
	posted.Set("contactEmail", "asha@example.com")
	posted.Set("ph", "6.5")

	clean, errs := ValidateForm("test/contact", posted)
	if len(errs) != 0 {
		t.Fatalf("errs = %+v", errs)
	}
	if clean["contactName"] != "Asha" || clean["ph"] != "6.5" {
		t.Fatalf("clean = %+v", clean)
	}
}

func TestValidateFormRequiredFields(t *testing.T) {
	registerTestForm(t)
	posted := validPost(t)
	posted.Set("contactEmail", "asha@example.com")

	_, errs := ValidateForm("test/contact", posted)
	if len(errs) != 1 || errs[0].Name != "contactName" {
		t.Fatalf("errs = %+v", errs)
	}
	if errs[0].Message != "Please fill all required fields." {
		t.Fatalf("message = %q", errs[0].Message)
	}
}

func TestValidateFormRejectsBadEmailAndRange(t *testing.T) {
	registerTestForm(t)
	posted := validPost(t)
	posted.Set("contactName", "Asha")
	posted.Set("contactEmail", "not-an-address")
	posted.Set("ph", "19")

	_, errs := ValidateForm("test/contact", posted)
	if len(errs) != 2 {
		t.Fatalf("errs = %+v", errs)
	}
}

func TestValidateFormRejectsBadCSRF(t *testing.T) {
	registerTestForm(t)
	posted := url.Values{"csrf_token": {"garbage"}, "render_ts": {"1"}}
	_, errs := ValidateForm("test/contact", posted)
	if len(errs) != 1 || errs[0].Name != "" {
		t.Fatalf("errs = %+v", errs)
	}
}

func TestValidateFormRejectsFastSubmission(t *testing.T) {
	registerTestForm(t)
	tok, _ := GenerateToken()
	posted := url.Values{
		"csrf_token": {tok},
		"render_ts":  {strconv.FormatInt(time.Now().UnixMicro(), 10)},
	}
	_, errs := ValidateForm("test/contact", posted)
	if len(errs) != 1 {
		t.Fatalf("errs = %+v", errs)
	}
}

func TestCSRFTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !VerifyToken(tok) {
		t.Fatal("fresh token must verify")
	}
	if VerifyToken(tok + "x") {
		t.Fatal("tampered token must fail")
	}
	if VerifyToken("") {
		t.Fatal("empty token must fail")
	}
}

func TestHandleSubmitValidationError(t *testing.T) {
	registerTestForm(t)
	req := httptest.NewRequest("POST", "/contact", bytes.NewBufferString("contactName="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := HandleSubmit("test/contact", req)
	if !IsValidationError(err) {
		t.Fatalf("err = %v", err)
	}
	if fields := FieldErrors(err); len(fields) == 0 {
		t.Fatal("expected field errors")
	}
}

func TestLoadFormDefFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crop.yaml")
	yaml := `
id: advisor/crop
title: Crop Recommendation
fields:
  - name: ph
    label: Soil pH
    type: number
    required: true
    min: 0
    max: 14
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fd, err := LoadFormDef(path)
	if err != nil {
		t.Fatalf("LoadFormDef: %v", err)
	}
	if fd.ID != "advisor/crop" || len(fd.Fields) != 1 || !fd.Fields[0].Required {
		t.Fatalf("fd = %+v", fd)
	}
	if fd.Fields[0].Min == nil || *fd.Fields[0].Min != 0 || *fd.Fields[0].Max != 14 {
		t.Fatalf("range = %+v", fd.Fields[0])
	}
}

func TestLoadFormDefRejectsBrokenDefinitions(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"no-id.yaml":    "fields:\n  - name: a\n    label: A\n    type: text\n",
		"no-field.yaml": "id: x/y\nfields: []\n",
		"dup.yaml":      "id: x/y\nfields:\n  - {name: a, label: A, type: text}\n  - {name: a, label: B, type: text}\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		os.WriteFile(path, []byte(body), 0o644)
		if _, err := LoadFormDef(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

// pngHeader is the 8-byte PNG signature plus padding so content sniffing
// identifies the payload as an image.
var pngHeader = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)

func TestImageFileAcceptsImage(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("leafImage", "leaf.png")
	part.Write(pngHeader)
	mw.Close()

	req := httptest.NewRequest("POST", "/disease", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	file, header, err := ImageFile(req, "leafImage")
	if err != nil {
		t.Fatalf("ImageFile: %v", err)
	}
	defer file.Close()
	if header.Filename != "leaf.png" {
		t.Fatalf("filename = %q", header.Filename)
	}

	// Reader must be rewound to the start.
	head := make([]byte, 4)
	file.Read(head)
	if fmt.Sprintf("%x", head) != "89504e47" {
		t.Fatalf("head = %x", head)
	}
}

func TestImageFileRejectsNonImage(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("leafImage", "notes.txt")
	part.Write([]byte("just some text, definitely not pixels"))
	mw.Close()

	req := httptest.NewRequest("POST", "/disease", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, _, err := ImageFile(req, "leafImage")
	if !IsValidationError(err) {
		t.Fatalf("err = %v", err)
	}
	fields := FieldErrors(err)
	if len(fields) != 1 || fields[0].Message != "Please select a valid image file." {
		t.Fatalf("fields = %+v", fields)
	}
}

func TestImageFileRejectsMissingFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "x")
	mw.Close()

	req := httptest.NewRequest("POST", "/disease", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, _, err := ImageFile(req, "leafImage")
	if !IsValidationError(err) {
		t.Fatalf("err = %v", err)
	}
}
