// internal/email/email.go
//
// Outbound mail through the EmailJS REST API.  Feedback and contact
// submissions are forwarded as template sends; the service, template,
// and public key come from configuration.
//
// Notes:
//   - EmailJS answers 200 with a bare "OK" body on success and a plain
//     text error otherwise.  Callers only ever see the fixed failure
//     copy; the raw response goes to the log.

package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/metrics"
)

// ErrSendFailed is what form handlers show when delivery fails.
var ErrSendFailed = errors.New("Failed to send email. Please try again later.")

// Params is the template variable set for one send.
type Params map[string]string

// FeedbackParams shapes a feedback submission for the feedback template.
func FeedbackParams(name, addr, message string) Params {
	if name = strings.TrimSpace(name); name == "" {
		name = "Anonymous"
	}
	if addr = strings.TrimSpace(addr); addr == "" {
		addr = "no-email@example.com"
	}
	if message = strings.TrimSpace(message); message == "" {
		message = "No message provided"
	}
	return Params{
		"from_name":  name,
		"from_email": addr,
		"message":    "Feedback from FarmSathi:\n\n" + message,
		"subject":    "New Feedback from FarmSathi",
	}
}

// ContactParams shapes a contact submission for the contact template.
func ContactParams(name, addr, phone, message string) Params {
	if name = strings.TrimSpace(name); name == "" {
		name = "Anonymous"
	}
	if addr = strings.TrimSpace(addr); addr == "" {
		addr = "no-email@example.com"
	}
	if phone = strings.TrimSpace(phone); phone == "" {
		phone = "Not provided"
	}
	if message = strings.TrimSpace(message); message == "" {
		message = "No message provided"
	}
	return Params{
		"from_name":  name,
		"from_email": addr,
		"phone":      phone,
		"message":    message,
		"subject":    "New Contact Message from FarmSathi",
	}
}

// Client sends template mails through EmailJS.
type Client struct {
	endpoint  string
	serviceID string
	publicKey string
	http      *http.Client
	log       *zap.SugaredLogger
}

// Option tweaks a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the send logger.
func WithLogger(l *zap.SugaredLogger) Option { return func(c *Client) { c.log = l } }

// New returns a Client for the given EmailJS endpoint and account.
func New(endpoint, serviceID, publicKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		serviceID: serviceID,
		publicKey: publicKey,
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       zap.S(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send delivers one template mail.  Any failure collapses to
// ErrSendFailed for the caller.
func (c *Client) Send(ctx context.Context, templateID string, params Params) error {
	payload, err := json.Marshal(map[string]any{
		"service_id":      c.serviceID,
		"template_id":     templateID,
		"user_id":         c.publicKey,
		"template_params": params,
	})
	if err != nil {
		return fmt.Errorf("email: encode send: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/api/v1.0/email/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("email: build send: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("email delivery failed", "template", templateID, "err", err)
		metrics.EmailSendTotal.WithLabelValues("error").Inc()
		return ErrSendFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warnw("email delivery rejected",
			"template", templateID, "status", resp.StatusCode, "body", string(body))
		metrics.EmailSendTotal.WithLabelValues("error").Inc()
		return ErrSendFailed
	}

	metrics.EmailSendTotal.WithLabelValues("ok").Inc()
	return nil
}
