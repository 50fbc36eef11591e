// internal/remote/client.go
//
// HTTP client for the advisory backend: crop recommendation, fertilizer
// recommendation, disease prediction, and the chat assistant.  All four
// endpoints take multipart form data; responses are JSON except chat,
// which may answer plain text.
//
// Context:
//   - One-shot calls, no retry layer.  Callers surface the returned
//     error's message directly.
//   - Disease callers must verify the upload is an image before calling;
//     the client forwards whatever it is handed.

package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/metrics"
)

const (
	endpointCrop       = "crop-recommend"
	endpointFertilizer = "fertilizer-recommend"
	endpointDisease    = "predict-disease"
	endpointChat       = "chatbot"
)

// TokenSource supplies the identity token for one request, reading it from
// the request context.  It returns "" when the session is anonymous.  The
// per-request lookup keeps concurrent visitors from sharing a token.
type TokenSource func(ctx context.Context) string

// Client talks to the advisory backend.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     *zap.SugaredLogger
}

// Option tweaks a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the request logger.
func WithLogger(l *zap.SugaredLogger) Option { return func(c *Client) { c.log = l } }

// WithTokenSource enables Authorization: Bearer forwarding.
func WithTokenSource(ts TokenSource) Option { return func(c *Client) { c.token = ts } }

// New returns a Client for the given backend base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     zap.S(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

/*──────────────────────────── operations ─────────────────────────────────*/

// SubmitCropForm posts the soil and climate readings and decodes the
// recommended crop.
func (c *Client) SubmitCropForm(ctx context.Context, fields url.Values) (CropResult, error) {
	raw, err := c.postFields(ctx, endpointCrop, fields)
	if err != nil {
		return CropResult{}, err
	}
	return decodeCrop(raw), nil
}

// SubmitFertilizerForm posts the crop and soil readings and decodes the
// recommended fertilizer.
func (c *Client) SubmitFertilizerForm(ctx context.Context, fields url.Values) (FertilizerResult, error) {
	raw, err := c.postFields(ctx, endpointFertilizer, fields)
	if err != nil {
		return FertilizerResult{}, err
	}
	return decodeFertilizer(raw), nil
}

// SubmitDiseaseImage streams a leaf photo to the prediction endpoint.
func (c *Client) SubmitDiseaseImage(ctx context.Context, filename string, file io.Reader) (DiseaseResult, error) {
	raw, err := c.post(ctx, endpointDisease, func(w *multipart.Writer) error {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, file)
		return err
	})
	if err != nil {
		return DiseaseResult{}, err
	}
	return decodeDisease(raw), nil
}

// SendChatQuery posts a chat message and returns the reply normalized
// to a display string.
func (c *Client) SendChatQuery(ctx context.Context, text string) (string, error) {
	start := time.Now()
	resp, err := c.do(ctx, endpointChat, func(w *multipart.Writer) error {
		return w.WriteField("query", text)
	})
	metrics.RemoteRequestDuration.WithLabelValues(endpointChat).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RemoteRequestErrorsTotal.WithLabelValues(endpointChat).Inc()
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RemoteRequestErrorsTotal.WithLabelValues(endpointChat).Inc()
		return "", c.failure(endpointChat, resp.StatusCode, body)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return normalizeChatJSON(body), nil
	}
	return string(body), nil
}

/*──────────────────────────── plumbing ───────────────────────────────────*/

func (c *Client) postFields(ctx context.Context, endpoint string, fields url.Values) ([]byte, error) {
	return c.post(ctx, endpoint, func(w *multipart.Writer) error {
		for key, vals := range fields {
			for _, v := range vals {
				if err := w.WriteField(key, v); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// post runs a multipart POST and returns the response body, mapping
// non-2xx and network failures to TransportError.
func (c *Client) post(ctx context.Context, endpoint string, build func(*multipart.Writer) error) ([]byte, error) {
	start := time.Now()
	resp, err := c.do(ctx, endpoint, build)
	metrics.RemoteRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RemoteRequestErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RemoteRequestErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, c.failure(endpoint, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, endpoint string, build func(*multipart.Writer) error) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := build(mw); err != nil {
		return nil, fmt.Errorf("remote: encode %s request: %w", endpoint, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("remote: encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("remote: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != nil {
		if tok := c.token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("backend unreachable", "endpoint", endpoint, "err", err)
		return nil, &TransportError{
			Endpoint: endpoint,
			Message:  failureMessage(endpoint, 0, "network error"),
		}
	}
	return resp, nil
}

func (c *Client) failure(endpoint string, status int, body []byte) error {
	text := strings.TrimSpace(string(body))
	c.log.Warnw("backend call failed", "endpoint", endpoint, "status", status, "body", text)
	return &TransportError{
		Endpoint: endpoint,
		Status:   status,
		Body:     text,
		Message:  failureMessage(endpoint, status, text),
	}
}
