// Package facebook implements the social.Provider contract for Facebook.
package facebook

import (
	"context"
	"io"
	"net/http"
	"net/url"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-multiauth"
	"github.com/goliatone/go-multiauth/social"
	"golang.org/x/oauth2"
	fboauth "golang.org/x/oauth2/facebook"
)

const defaultUserInfoURL = "https://graph.facebook.com/v19.0/me"

// DefaultScopes returns the default Facebook scopes.
func DefaultScopes() []string {
	return []string{"email", "public_profile"}
}

// Provider implements social.Provider for Facebook.
type Provider struct {
	config      *oauth2.Config
	httpClient  *http.Client
	userInfoURL string
}

// New creates a new Facebook provider.
func New(cfg social.Config) *Provider {
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}
	return &Provider{
		config:      cfg.NewOAuthConfig(fboauth.Endpoint, DefaultScopes()),
		httpClient:  cfg.Client(),
		userInfoURL: userInfoURL,
	}
}

// Name implements social.Provider.
func (p *Provider) Name() string { return "facebook" }

// AuthCodeURL implements social.Provider.
func (p *Provider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange implements social.Provider.
func (p *Provider) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, goerrors.Wrap(err, social.ErrTokenExchangeFailed.Category, social.ErrTokenExchangeFailed.Message).
			WithTextCode(social.ErrTokenExchangeFailed.TextCode)
	}
	return token, nil
}

// UserInfo implements social.Provider.
func (p *Provider) UserInfo(ctx context.Context, token *oauth2.Token) (*auth.ExternalProfile, error) {
	endpoint := p.userInfoURL + "?" + url.Values{
		"fields": {"id,name,email,picture.type(large)"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build user info request")
	}
	token.SetAuthHeader(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, social.ErrUserInfoFailed.Category, social.ErrUserInfoFailed.Message).
			WithTextCode(social.ErrUserInfoFailed.TextCode)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerrors.New(social.ErrUserInfoFailed.Message, social.ErrUserInfoFailed.Category).
			WithTextCode(social.ErrUserInfoFailed.TextCode).
			WithMetadata(map[string]any{"status": resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerrors.Wrap(err, social.ErrUserInfoFailed.Category, social.ErrUserInfoFailed.Message).
			WithTextCode(social.ErrUserInfoFailed.TextCode)
	}

	return parseProfile(body)
}

var _ social.Provider = (*Provider)(nil)
