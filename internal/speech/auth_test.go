package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthorizationHeaderScheme(t *testing.T) {
	static := Credential{Value: "my-api-key"}
	if got := static.AuthorizationHeader(); got != "Token my-api-key" {
		t.Errorf("Static header = %q, want \"Token my-api-key\"", got)
	}

	shortLived := Credential{Value: "issued-token", ShortLived: true}
	if got := shortLived.AuthorizationHeader(); got != "Bearer issued-token" {
		t.Errorf("Short-lived header = %q, want \"Bearer issued-token\"", got)
	}
}

func TestResolveStaticKey(t *testing.T) {
	// No server: static resolution must not touch the network
	provider := NewTokenProvider("http://127.0.0.1:1", time.Hour, []string{"usage:write"}, http.DefaultClient)

	cred, err := provider.Resolve(context.Background(), "my-api-key", false)
	if err != nil {
		t.Fatalf("Failed to resolve static key: %v", err)
	}

	if cred.Value != "my-api-key" || cred.ShortLived {
		t.Errorf("Expected raw key passthrough, got %+v", cred)
	}
}

func TestResolveMissingKey(t *testing.T) {
	provider := NewTokenProvider("http://127.0.0.1:1", time.Hour, []string{"usage:write"}, http.DefaultClient)

	_, err := provider.Resolve(context.Background(), "", false)
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("Expected ErrMissingCredential, got %v", err)
	}

	_, err = provider.Resolve(context.Background(), "", true)
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("Expected ErrMissingCredential in short-lived mode, got %v", err)
	}
}

func TestResolveShortLivedToken(t *testing.T) {
	var gotAuth string
	var gotBody grantRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/auth/grant" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(grantResponse{
			AccessToken: "short-lived-token",
			ExpiresIn:   3600,
		})
	}))
	defer server.Close()

	provider := NewTokenProvider(server.URL, time.Hour, []string{"usage:write"}, server.Client())

	cred, err := provider.Resolve(context.Background(), "my-api-key", true)
	if err != nil {
		t.Fatalf("Failed to resolve short-lived token: %v", err)
	}

	if cred.Value != "short-lived-token" || !cred.ShortLived {
		t.Errorf("Expected issued token, got %+v", cred)
	}

	// The grant request itself authenticates with the raw key
	if gotAuth != "Token my-api-key" {
		t.Errorf("Grant Authorization = %q, want \"Token my-api-key\"", gotAuth)
	}

	if gotBody.TTL != 3600 {
		t.Errorf("Grant TTL = %d, want 3600", gotBody.TTL)
	}

	if len(gotBody.Scopes) != 1 || gotBody.Scopes[0] != "usage:write" {
		t.Errorf("Grant scopes = %v, want [usage:write]", gotBody.Scopes)
	}
}

func TestResolveGrantRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := NewTokenProvider(server.URL, time.Hour, []string{"usage:write"}, server.Client())

	_, err := provider.Resolve(context.Background(), "bad-key", true)
	if err == nil {
		t.Fatal("Expected error from rejected grant")
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %T: %v", err, err)
	}

	if authErr.Status != "401 Unauthorized" {
		t.Errorf("AuthError status = %q, want \"401 Unauthorized\"", authErr.Status)
	}
}

func TestResolveGrantMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"expires_in": 3600})
	}))
	defer server.Close()

	provider := NewTokenProvider(server.URL, time.Hour, []string{"usage:write"}, server.Client())

	_, err := provider.Resolve(context.Background(), "my-api-key", true)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestResolveNeverCachesTokens(t *testing.T) {
	grants := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		grants++
		_ = json.NewEncoder(w).Encode(grantResponse{AccessToken: "tok", ExpiresIn: 3600})
	}))
	defer server.Close()

	provider := NewTokenProvider(server.URL, time.Hour, []string{"usage:write"}, server.Client())

	for i := 0; i < 3; i++ {
		if _, err := provider.Resolve(context.Background(), "my-api-key", true); err != nil {
			t.Fatalf("Resolve %d failed: %v", i, err)
		}
	}

	if grants != 3 {
		t.Errorf("Expected 3 grant requests (no caching), got %d", grants)
	}
}
