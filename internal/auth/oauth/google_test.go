package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"
)

func newGoogleTestServer(t *testing.T, userInfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userInfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogle(srv *httptest.Server) *GoogleProvider {
	return NewGoogleProvider("client-id", "client-secret", "http://localhost/api/auth/callback/google").
		WithEndpoints(oauth2.Endpoint{
			AuthURL:  srv.URL + "/auth",
			TokenURL: srv.URL + "/token",
		}, srv.URL+"/userinfo")
}

func TestGoogleProvider_Exchange(t *testing.T) {
	srv := newGoogleTestServer(t, `{"sub":"g-1","email":"alice@example.com","email_verified":true,"name":"Alice","picture":"https://example.com/a.png"}`)
	p := newTestGoogle(srv)

	profile, err := p.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if profile.Provider != "google" || profile.Subject != "g-1" || profile.Email != "alice@example.com" {
		t.Errorf("unexpected profile %+v", profile)
	}
	if profile.AvatarURL != "https://example.com/a.png" {
		t.Errorf("expected picture as avatar, got %s", profile.AvatarURL)
	}
}

func TestGoogleProvider_ExchangeBadCode(t *testing.T) {
	srv := newGoogleTestServer(t, `{}`)
	p := newTestGoogle(srv)

	_, err := p.Exchange(context.Background(), "bad-code")
	if !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("expected ErrExchangeFailed, got %v", err)
	}
}

func TestGoogleProvider_UnverifiedEmail(t *testing.T) {
	srv := newGoogleTestServer(t, `{"sub":"g-2","email":"bob@example.com","email_verified":false}`)
	p := newTestGoogle(srv)

	_, err := p.Exchange(context.Background(), "good-code")
	if !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	p := NewGoogleProvider("client-id", "secret", "http://localhost/cb")

	raw := p.AuthCodeURL("state-xyz")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "state-xyz" || q.Get("client_id") != "client-id" || q.Get("redirect_uri") != "http://localhost/cb" {
		t.Errorf("unexpected auth url %s", raw)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewGoogleProvider("id", "secret", "cb"), nil)

	if _, err := r.Get("google"); err != nil {
		t.Errorf("expected google provider, got %v", err)
	}
	if _, err := r.Get("github"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
	if names := r.Names(); len(names) != 1 || names[0] != "google" {
		t.Errorf("unexpected names %v", names)
	}
	if NewState() == NewState() {
		t.Error("expected distinct states")
	}
}
