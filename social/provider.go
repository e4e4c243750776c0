// Package social carries the external provider side of authentication: the
// provider contract a transport layer uses for the OAuth dance, and the
// strategy that resolves exchanged profiles to identities.
package social

import (
	"context"
	"net/http"
	"time"

	auth "github.com/goliatone/go-multiauth"
	"golang.org/x/oauth2"
)

// Provider is one external identity provider. The transport layer drives
// the code flow (AuthCodeURL, Exchange, UserInfo); the auth core only ever
// sees the normalized profile.
type Provider interface {
	// Name returns the provider identifier (e.g., "google", "facebook").
	Name() string

	// AuthCodeURL returns the URL to redirect users for authorization.
	// The state parameter should be included for CSRF protection.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)

	// UserInfo fetches and normalizes the user's profile.
	UserInfo(ctx context.Context, token *oauth2.Token) (*auth.ExternalProfile, error)
}

// Config holds the per provider settings supplied at process start: client
// credential pair and callback target.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	// endpoint overrides, mainly for tests
	AuthURL     string
	TokenURL    string
	UserInfoURL string

	HTTPClient *http.Client
}

// NewOAuthConfig builds the x/oauth2 configuration for the provider.
func (c Config) NewOAuthConfig(endpoint oauth2.Endpoint, defaultScopes []string) *oauth2.Config {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	if c.AuthURL != "" {
		endpoint.AuthURL = c.AuthURL
	}
	if c.TokenURL != "" {
		endpoint.TokenURL = c.TokenURL
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.CallbackURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}
}

// Client returns the HTTP client used for profile fetches.
func (c Config) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
