// internal/form/upload.go
//
// Forms subsystem: upload pre-checks.
//
// Context
//   The disease-detection form posts a leaf photo.  The backend is only ever
//   handed a file that passed the image check here; it performs no check of
//   its own.  Sniffing uses the first 512 bytes, not the client-supplied
//   Content-Type header, which is trivially forged.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

// maxUploadBytes caps a single image upload at 10 MiB.
const maxUploadBytes = 10 << 20

// VerifyRequest checks the CSRF token and render timestamp on a multipart
// submission whose values are extracted by the caller instead of going
// through ValidateForm.  Upload handlers call this before touching the file.
func VerifyRequest(r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return validationError{Fields: []ErrorField{
			{"", "Bad form submission.  Please reload the page."},
		}}
	}
	if !verifyCSRF(r.FormValue("csrf_token")) {
		return validationError{Fields: []ErrorField{{"", csrfFailMsg}}}
	}
	if msg := checkTiming(r.FormValue("render_ts")); msg != "" {
		return validationError{Fields: []ErrorField{{"", msg}}}
	}
	return nil
}

// ImageFile extracts the named file from a multipart request and verifies it
// is an image.  The returned reader is positioned at the start of the file.
func ImageFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, validationError{Fields: []ErrorField{
			{field, "Please select an image first."},
		}}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, validationError{Fields: []ErrorField{
			{field, "Please select an image first."},
		}}
	}

	head := make([]byte, 512)
	n, _ := file.Read(head)
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		file.Close()
		return nil, nil, validationError{Fields: []ErrorField{
			{field, "Please select a valid image file."},
		}}
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("form: rewind upload: %w", err)
	}

	return file, header, nil
}
