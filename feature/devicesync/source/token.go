package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenProvider supplies a bearer token for upstream API calls.
type TokenProvider interface {
	// GetAccessToken returns a valid access token.
	GetAccessToken(ctx context.Context) (string, error)
	// InvalidateToken discards any cached token so the next call fetches fresh.
	InvalidateToken()
}

// expiryMargin is subtracted from the token lifetime so a token is never
// used right at its expiry edge mid-pagination.
const expiryMargin = 5 * time.Minute

// CachedTokenProvider wraps a TokenProvider and caches the access token.
type CachedTokenProvider struct {
	provider TokenProvider
	mu       sync.RWMutex
	token    string
	expiry   time.Time
	lifetime time.Duration
}

// NewCachedTokenProvider creates a new cached token provider. The lifetime
// controls how long a fetched token is reused before a refresh.
func NewCachedTokenProvider(provider TokenProvider, lifetime time.Duration) *CachedTokenProvider {
	if lifetime <= expiryMargin {
		lifetime = 30 * time.Minute
	}
	return &CachedTokenProvider{
		provider: provider,
		lifetime: lifetime,
	}
}

// GetAccessToken returns a cached token if valid, otherwise fetches a new one.
func (c *CachedTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.token != "" && time.Now().Before(c.expiry) {
		token := c.token
		c.mu.RUnlock()

		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check in case another goroutine already fetched a token
	if c.token != "" && time.Now().Before(c.expiry) {
		return c.token, nil
	}

	token, err := c.provider.GetAccessToken(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiry = time.Now().Add(c.lifetime - expiryMargin)

	return token, nil
}

// InvalidateToken clears the cached token.
func (c *CachedTokenProvider) InvalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.expiry = time.Time{}
}

// clientCredentialsProvider fetches tokens via the OAuth client credentials
// grant against the platform's token endpoint.
type clientCredentialsProvider struct {
	endpoint     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func newClientCredentialsProvider(cfg Config, httpClient *http.Client) *clientCredentialsProvider {
	return &clientCredentialsProvider{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/") + "/oauth/token",
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
	}
}

func (p *clientCredentialsProvider) GetAccessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	if body.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}

	return body.AccessToken, nil
}

// InvalidateToken is a no-op; the raw provider holds no state.
func (p *clientCredentialsProvider) InvalidateToken() {}
