package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Assertion is the credential material a transport layer hands to a
// strategy. It is a closed set: PasswordAssertion for local login,
// ExternalAssertion for provider logins whose token exchange already
// happened upstream.
type Assertion interface {
	assertion()
}

// PasswordAssertion carries local credentials.
type PasswordAssertion struct {
	Username string
	Password string
}

func (PasswordAssertion) assertion() {}

// ExternalAssertion carries a normalized provider profile.
type ExternalAssertion struct {
	Profile *ExternalProfile
}

func (ExternalAssertion) assertion() {}

// ExternalProfile is the normalized result of a provider token exchange.
type ExternalProfile struct {
	Provider      string
	ExternalUID   string
	Email         string
	EmailVerified bool
	Name          string
	Username      string
	AvatarURL     string
	Raw           map[string]any
}

// AuthStrategy resolves an inbound assertion to a user record or a typed
// failure. Implementations must not mint tokens; that stays with the
// authenticator.
type AuthStrategy interface {
	Name() string
	Resolve(ctx context.Context, assertion Assertion) (*User, error)
}

// Registry holds the configured strategies keyed by name. It is populated
// once at construction and immutable afterwards; there is no runtime
// strategy swapping.
type Registry struct {
	strategies map[string]AuthStrategy
}

// NewRegistry registers the given strategies by name. Later entries with a
// duplicate name replace earlier ones.
func NewRegistry(strategies ...AuthStrategy) *Registry {
	m := make(map[string]AuthStrategy, len(strategies))
	for _, s := range strategies {
		if s != nil {
			m[s.Name()] = s
		}
	}
	return &Registry{strategies: m}
}

// Get returns the strategy for the given key or ErrUnknownStrategy.
func (r *Registry) Get(name string) (AuthStrategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, errors.New(ErrUnknownStrategy.Message, ErrUnknownStrategy.Category).
			WithTextCode(ErrUnknownStrategy.TextCode).
			WithMetadata(map[string]any{"strategy": name})
	}
	return s, nil
}

// Resolve dispatches the assertion to the named strategy.
func (r *Registry) Resolve(ctx context.Context, name string, assertion Assertion) (*User, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, assertion)
}

// Names lists the registered strategy keys.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	return names
}
