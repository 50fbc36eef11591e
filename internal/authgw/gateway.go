// internal/authgw/gateway.go
//
// Identity-provider gateway.
//
// Context
// -------
// All four auth operations are single request/response round-trips against
// an external provider reachable over HTTPS.  The provider's contract:
//
//	POST {base}/v1/accounts:signUp             {email, password}
//	POST {base}/v1/accounts:signInWithPassword {email, password}
//	POST {base}/v1/accounts:signInWithIdp      {provider, id_token}
//	POST {base}/v1/accounts:revoke             {id_token}
//
// Success bodies carry {uid, email, display_name, id_token}; failures are
// non-2xx with {code, message} where code lives under the `auth/` namespace.
// SignOut never surfaces an error to the caller; revocation failures are
// logged and swallowed.  Each successful operation publishes the new Session
// on the Subject.
package authgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/metrics"
)

const federatedProvider = "google.com"

// Gateway wraps the external identity provider.
type Gateway struct {
	baseURL string
	apiKey  string
	http    *http.Client
	subject *Subject
	log     *zap.SugaredLogger
}

// Option configures gateway construction.
type Option func(*Gateway)

// WithHTTPClient overrides the transport, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.http = c }
}

// WithLogger overrides the default global sugar logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(g *Gateway) { g.log = l }
}

// New returns a Gateway for the provider at baseURL.  The Subject starts in
// StateUnknown until the first operation or an explicit Publish.
func New(baseURL, apiKey string, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		subject: NewSubject(),
		log:     zap.S(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Subject exposes the session observable.  The gateway is its only writer.
func (g *Gateway) Subject() *Subject { return g.subject }

// SignUp registers a new email/password account and signs the user in.
func (g *Gateway) SignUp(ctx context.Context, email, password string) (Session, error) {
	return g.credentialOp(ctx, "signUp", "signup", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignIn authenticates an existing email/password account.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (Session, error) {
	return g.credentialOp(ctx, "signInWithPassword", "signin", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignInFederated exchanges a federated provider token for a session.
func (g *Gateway) SignInFederated(ctx context.Context, providerToken string) (Session, error) {
	return g.credentialOp(ctx, "signInWithIdp", "federated", map[string]string{
		"provider": federatedProvider,
		"id_token": providerToken,
	})
}

// SignOut revokes the token best-effort and publishes the anonymous session.
// It never returns an error; from the caller's perspective sign-out always
// succeeds.
func (g *Gateway) SignOut(ctx context.Context, idToken string) {
	if idToken != "" {
		if _, err := g.post(ctx, "revoke", map[string]string{"id_token": idToken}); err != nil {
			g.log.Warnw("token revocation failed", "err", err)
		}
	}
	g.publish(Anonymous())
}

//
// internals
//

// providerAccount is the provider's success body.
type providerAccount struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IDToken     string `json:"id_token"`
}

// providerError is the provider's failure body.
type providerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (g *Gateway) credentialOp(ctx context.Context, endpoint, op string, body map[string]string) (Session, error) {
	acct, err := g.post(ctx, endpoint, body)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(op, "error").Inc()
		g.log.Infow("auth operation failed", "op", op, "err", err)
		return Session{}, err
	}

	sess := Authenticated(Identity{
		UID:         acct.UID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		IDToken:     acct.IDToken,
	})
	metrics.AuthAttemptsTotal.WithLabelValues(op, "ok").Inc()
	g.publish(sess)
	return sess, nil
}

func (g *Gateway) post(ctx context.Context, endpoint string, body map[string]string) (*providerAccount, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &AuthError{Message: err.Error()}
	}

	url := fmt.Sprintf("%s/v1/accounts:%s?key=%s", g.baseURL, endpoint, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &AuthError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, &AuthError{Code: CodeNetworkFailed, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &AuthError{Code: CodeNetworkFailed, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var pe providerError
		if json.Unmarshal(raw, &pe) == nil && pe.Code != "" {
			return nil, &AuthError{Code: pe.Code, Message: pe.Message}
		}
		// Undecodable failure body; stays inside the auth namespace so the
		// mapper renders the generic authentication message.
		return nil, &AuthError{
			Code:    "auth/internal-error",
			Message: fmt.Sprintf("provider status %d", resp.StatusCode),
		}
	}

	var acct providerAccount
	if err := json.Unmarshal(raw, &acct); err != nil {
		return nil, &AuthError{Code: "auth/internal-error", Message: err.Error()}
	}
	return &acct, nil
}

func (g *Gateway) publish(sess Session) {
	metrics.SessionTransitionsTotal.WithLabelValues(sess.State.String()).Inc()
	g.subject.Publish(sess)
}
