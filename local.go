package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// StrategyLocal is the registry key for password login.
const StrategyLocal = "local"

// LocalPasswordStrategy resolves PasswordAssertions against the identity
// store. Unknown usernames, identities without an internal account, and
// wrong passwords all fail with the same ErrMismatchedHashAndPassword so a
// caller cannot probe which accounts exist.
type LocalPasswordStrategy struct {
	store  UserStore
	hasher PasswordAuthenticator
	logger Logger
}

// NewLocalPasswordStrategy builds the local strategy with the bcrypt hasher.
func NewLocalPasswordStrategy(store UserStore) *LocalPasswordStrategy {
	return &LocalPasswordStrategy{
		store:  store,
		hasher: DefaultHasher,
		logger: defLogger{},
	}
}

func (s *LocalPasswordStrategy) WithHasher(hasher PasswordAuthenticator) *LocalPasswordStrategy {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

func (s *LocalPasswordStrategy) WithLogger(logger Logger) *LocalPasswordStrategy {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Name implements AuthStrategy.
func (s *LocalPasswordStrategy) Name() string { return StrategyLocal }

// Resolve implements AuthStrategy.
func (s *LocalPasswordStrategy) Resolve(ctx context.Context, assertion Assertion) (*User, error) {
	creds, ok := assertion.(PasswordAssertion)
	if !ok {
		return nil, ErrMismatchedHashAndPassword
	}

	user, err := s.store.GetByUsername(ctx, creds.Username)
	if err != nil {
		if !goerrors.IsNotFound(err) {
			// store fault, surface verbatim
			return nil, WrapStoreErr(err, "failed to retrieve user during verification")
		}
		// Burn a compare on a throwaway hash so the unknown-user path costs
		// the same as a wrong password.
		_ = s.hasher.ComparePasswordAndHash(creds.Password, RandomPasswordHash())
		return nil, ErrMismatchedHashAndPassword
	}

	account, ok := user.InternalAccount()
	if !ok {
		s.logger.Debug("password login attempted for external-only identity %s", creds.Username)
		_ = s.hasher.ComparePasswordAndHash(creds.Password, RandomPasswordHash())
		return nil, ErrMismatchedHashAndPassword
	}

	if err := s.hasher.ComparePasswordAndHash(creds.Password, account.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return user, nil
}

var _ AuthStrategy = (*LocalPasswordStrategy)(nil)
