package social

import (
	"context"

	auth "github.com/goliatone/go-multiauth"
)

// Strategy is the per provider auth.AuthStrategy. It consumes assertions
// whose token exchange already happened in the transport layer and
// delegates identity resolution to the account linking model.
type Strategy struct {
	provider string
	accounts *auth.Accounts
}

// NewStrategy builds the strategy for one provider name.
func NewStrategy(provider string, accounts *auth.Accounts) *Strategy {
	return &Strategy{
		provider: provider,
		accounts: accounts,
	}
}

// Name implements auth.AuthStrategy; the provider name doubles as the
// registry key.
func (s *Strategy) Name() string { return s.provider }

// Resolve implements auth.AuthStrategy.
func (s *Strategy) Resolve(ctx context.Context, assertion auth.Assertion) (*auth.User, error) {
	ext, ok := assertion.(auth.ExternalAssertion)
	if !ok {
		return nil, ErrEmptyProfile
	}

	profile := ext.Profile
	if profile == nil || profile.ExternalUID == "" {
		return nil, ErrEmptyProfile
	}

	provider := profile.Provider
	if provider == "" {
		provider = s.provider
	}
	if provider != s.provider {
		// an assertion exchanged by one provider must not resolve through
		// another's strategy
		return nil, ErrEmptyProfile
	}

	return s.accounts.FindOrCreateByExternalIdentity(ctx, provider, profile.ExternalUID, profile)
}

var _ auth.AuthStrategy = (*Strategy)(nil)
