package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Credential is a resolved authentication credential for a data request.
// The issuance endpoint and the data endpoints use different Authorization
// schemes for short-lived vs. static credentials; mixing them causes
// silent 401s, so the scheme travels with the value.
type Credential struct {
	Value      string
	ShortLived bool
}

// AuthorizationHeader returns the Authorization header value for this
// credential: "Bearer <token>" for short-lived tokens, "Token <key>" for
// static API keys.
func (c Credential) AuthorizationHeader() string {
	if c.ShortLived {
		return "Bearer " + c.Value
	}
	return "Token " + c.Value
}

// TokenProvider resolves the credential to use for a data request,
// exchanging the static API key for a short-lived token when requested.
// Issued tokens are never cached; every resolution in short-lived mode
// performs a fresh grant.
type TokenProvider struct {
	baseURL    string
	ttl        time.Duration
	scopes     []string
	httpClient *http.Client
}

// NewTokenProvider creates a token provider against the given provider host
func NewTokenProvider(baseURL string, ttl time.Duration, scopes []string, httpClient *http.Client) *TokenProvider {
	return &TokenProvider{
		baseURL:    baseURL,
		ttl:        ttl,
		scopes:     scopes,
		httpClient: httpClient,
	}
}

// grantRequest is the token issuance request body
type grantRequest struct {
	Scopes []string `json:"scopes"`
	TTL    int      `json:"ttl"`
}

// grantResponse is the token issuance response body
type grantResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Resolve returns the credential to authenticate a data request with.
// With short-lived mode disabled the static key is returned unchanged;
// with it enabled a fresh token is requested from the issuance endpoint.
func (p *TokenProvider) Resolve(ctx context.Context, apiKey string, shortLived bool) (Credential, error) {
	if apiKey == "" {
		return Credential{}, ErrMissingCredential
	}

	if !shortLived {
		return Credential{Value: apiKey}, nil
	}

	body, err := json.Marshal(grantRequest{
		Scopes: p.scopes,
		TTL:    int(p.ttl.Seconds()),
	})
	if err != nil {
		return Credential{}, fmt.Errorf("failed to encode grant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/auth/grant", bytes.NewReader(body))
	if err != nil {
		return Credential{}, fmt.Errorf("failed to create grant request: %w", err)
	}

	// The issuance endpoint itself always authenticates with the raw key
	req.Header.Set("Authorization", "Token "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("grant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Credential{}, &AuthError{Status: resp.Status}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to read grant response: %w", err)
	}

	var grant grantResponse
	if err := json.Unmarshal(respBody, &grant); err != nil {
		return Credential{}, fmt.Errorf("failed to parse grant response: %w", err)
	}

	if grant.AccessToken == "" {
		return Credential{}, fmt.Errorf("grant response missing access token: %w", ErrMalformedResponse)
	}

	return Credential{Value: grant.AccessToken, ShortLived: true}, nil
}
