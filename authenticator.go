package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Auther wires the identity store, the strategy registry, and the token
// service into the Authenticator contract. Construct it once at process
// start; every request-scoped operation on it is stateless.
type Auther struct {
	store    UserStore
	accounts *Accounts
	registry *Registry
	tokens   TokenService
	logger   Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store UserStore, registry *Registry, opts Config) *Auther {
	tokens := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenTTL(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:    store,
		accounts: NewAccounts(store),
		registry: registry,
		tokens:   tokens,
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
		s.accounts = s.accounts.WithLogger(logger)
	}
	return s
}

// WithTokenService overrides the default HS256 token service.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// WithAccounts overrides the account linking service, e.g. to swap the
// password hasher.
func (s *Auther) WithAccounts(accounts *Accounts) *Auther {
	if accounts != nil {
		s.accounts = accounts
	}
	return s
}

// Accounts exposes the account linking model.
func (s *Auther) Accounts() *Accounts {
	return s.accounts
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Register creates a password backed identity.
func (s *Auther) Register(ctx context.Context, username, email, password string) (*User, error) {
	user, err := s.accounts.CreateInternal(ctx, username, email, password)
	if err != nil {
		s.logger.Error("Register failed for %s: %v", username, err)
		return nil, err
	}
	return user, nil
}

// Login dispatches the assertion to the named strategy and mints a session
// token for the resolved identity.
func (s *Auther) Login(ctx context.Context, strategy string, assertion Assertion) (string, *SessionClaims, error) {
	user, err := s.registry.Resolve(ctx, strategy, assertion)
	if err != nil {
		s.logger.Error("Login resolve failed for strategy %s: %v", strategy, err)
		return "", nil, err
	}

	if user == nil {
		s.logger.Error("Login strategy %s returned no identity", strategy)
		return "", nil, ErrIdentityNotFound
	}

	token, claims, err := s.tokens.Issue(IdentityFromUser(user))
	if err != nil {
		s.logger.Error("Login token issue failed for strategy %s: %v", strategy, err)
		return "", nil, err
	}

	s.logger.Info("login succeeded for %s via %s", user.Username, strategy)
	return token, claims, nil
}

// ValidateToken verifies the bearer token and resolves the subject back to a
// live identity. A user removed after issuance fails with
// ErrIdentityNotFound.
func (s *Auther) ValidateToken(ctx context.Context, token string) (Identity, *SessionClaims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		s.logger.Debug("ValidateToken rejected token: %v", err)
		return nil, nil, err
	}

	user, err := s.store.GetByUsername(ctx, claims.Username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, nil, ErrIdentityNotFound
		}
		return nil, nil, WrapStoreErr(err, "failed to resolve token subject")
	}

	return IdentityFromUser(user), claims, nil
}

// LinkExternalAccount binds a provider identity to an existing user looked
// up by username or email.
func (s *Auther) LinkExternalAccount(ctx context.Context, identifier, provider, externalUID string) (*User, error) {
	user, err := s.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, WrapStoreErr(err, "failed to load user for linking")
	}

	return s.accounts.LinkExternal(ctx, user, provider, externalUID)
}

var _ Authenticator = (*Auther)(nil)
