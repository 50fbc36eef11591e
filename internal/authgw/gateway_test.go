// internal/authgw/gateway_test.go
//
// Gateway tests against a fake provider served by httptest.
//
// Run: go test ./internal/authgw -v

package authgw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeProvider routes each accounts: endpoint to a canned response.
func fakeProvider(t *testing.T, responses map[string]func(w http.ResponseWriter, body map[string]string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		// Path shape: /v1/accounts:signUp
		idx := strings.LastIndex(r.URL.Path, ":")
		if idx == -1 {
			t.Fatalf("bad path %s", r.URL.Path)
		}
		endpoint := r.URL.Path[idx+1:]
		h, ok := responses[endpoint]
		if !ok {
			t.Fatalf("unexpected endpoint %s", endpoint)
		}
		h(w, body)
	}))
}

func TestSignInSuccessPublishesSession(t *testing.T) {
	srv := fakeProvider(t, map[string]func(http.ResponseWriter, map[string]string){
		"signInWithPassword": func(w http.ResponseWriter, body map[string]string) {
			if body["email"] != "farmer@example.com" {
				t.Errorf("email not forwarded: %v", body)
			}
			_ = json.NewEncoder(w).Encode(providerAccount{
				UID:         "uid-1",
				Email:       "farmer@example.com",
				DisplayName: "Farmer",
				IDToken:     "tok-123",
			})
		},
	})
	defer srv.Close()

	g := New(srv.URL, "test-key")

	var states []State
	defer g.Subject().Subscribe(func(s Session) { states = append(states, s.State) })()

	sess, err := g.SignIn(context.Background(), "farmer@example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.State != StateAuthenticated || sess.Identity.IDToken != "tok-123" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if states[len(states)-1] != StateAuthenticated {
		t.Fatalf("subject not updated: %v", states)
	}
}

func TestSignUpMapsProviderError(t *testing.T) {
	srv := fakeProvider(t, map[string]func(http.ResponseWriter, map[string]string){
		"signUp": func(w http.ResponseWriter, _ map[string]string) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(providerError{
				Code:    CodeEmailInUse,
				Message: "EMAIL_EXISTS",
			})
		},
	})
	defer srv.Close()

	g := New(srv.URL, "test-key")
	_, err := g.SignUp(context.Background(), "farmer@example.com", "hunter2")
	if !IsCode(err, CodeEmailInUse) {
		t.Fatalf("expected %s, got %v", CodeEmailInUse, err)
	}
	want := "This email is already registered. Please use a different email or try logging in."
	if got := MapError(err); got != want {
		t.Fatalf("mapped message: got %q", got)
	}
	if g.Subject().Current().State == StateAuthenticated {
		t.Fatal("failed sign-up must not publish an authenticated session")
	}
}

func TestSignInFederatedForwardsToken(t *testing.T) {
	srv := fakeProvider(t, map[string]func(http.ResponseWriter, map[string]string){
		"signInWithIdp": func(w http.ResponseWriter, body map[string]string) {
			if body["provider"] != "google.com" || body["id_token"] != "g-token" {
				t.Errorf("idp body wrong: %v", body)
			}
			_ = json.NewEncoder(w).Encode(providerAccount{UID: "uid-2", Email: "g@example.com", IDToken: "t"})
		},
	})
	defer srv.Close()

	g := New(srv.URL, "test-key")
	sess, err := g.SignInFederated(context.Background(), "g-token")
	if err != nil {
		t.Fatalf("SignInFederated: %v", err)
	}
	if sess.Identity.UID != "uid-2" {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestNetworkFailureIsAuthNamespaced(t *testing.T) {
	g := New("http://127.0.0.1:1", "test-key") // nothing listens here
	_, err := g.SignIn(context.Background(), "a@b.c", "pw")
	if !IsCode(err, CodeNetworkFailed) {
		t.Fatalf("expected %s, got %v", CodeNetworkFailed, err)
	}
	want := "Network error. Please check your internet connection and try again."
	if got := MapError(err); got != want {
		t.Fatalf("mapped message: got %q", got)
	}
}

func TestUndecodableFailureStaysGenericAuth(t *testing.T) {
	srv := fakeProvider(t, map[string]func(http.ResponseWriter, map[string]string){
		"signInWithPassword": func(w http.ResponseWriter, _ map[string]string) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		},
	})
	defer srv.Close()

	g := New(srv.URL, "test-key")
	_, err := g.SignIn(context.Background(), "a@b.c", "pw")
	if got := MapError(err); got != genericAuthMessage {
		t.Fatalf("expected generic auth message, got %q", got)
	}
}

func TestSignOutSwallowsRevokeFailure(t *testing.T) {
	srv := fakeProvider(t, map[string]func(http.ResponseWriter, map[string]string){
		"revoke": func(w http.ResponseWriter, _ map[string]string) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	defer srv.Close()

	g := New(srv.URL, "test-key")
	g.Subject().Publish(Authenticated(Identity{UID: "u"}))

	g.SignOut(context.Background(), "tok") // must not panic or error

	if g.Subject().Current().State != StateAnonymous {
		t.Fatal("SignOut must publish the anonymous session even when revoke fails")
	}
}
