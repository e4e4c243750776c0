package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Accounts is the account linking model: one user record reachable through
// any number of linked authentication methods. All mutation goes through the
// UserStore, whose uniqueness guarantees carry the concurrency story.
type Accounts struct {
	store  UserStore
	hasher PasswordAuthenticator
	logger Logger
}

// NewAccounts creates the linking service over a store.
func NewAccounts(store UserStore) *Accounts {
	return &Accounts{
		store:  store,
		hasher: DefaultHasher,
		logger: defLogger{},
	}
}

func (a *Accounts) WithHasher(hasher PasswordAuthenticator) *Accounts {
	if hasher != nil {
		a.hasher = hasher
	}
	return a
}

func (a *Accounts) WithLogger(logger Logger) *Accounts {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// CreateInternal registers a password backed identity. The store enforces
// username and email uniqueness atomically; a collision surfaces as
// ErrDuplicateIdentity.
func (a *Accounts) CreateInternal(ctx context.Context, username, email, password string) (*User, error) {
	if err := ValidateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := a.hasher.HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account, err := NewInternalAccount(hash)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username: username,
		Email:    email,
		Role:     DefaultRole,
		Accounts: []*LinkedAccount{account},
	}

	created, err := a.store.CreateUser(ctx, user)
	if err != nil {
		return nil, WrapStoreErr(err, "failed to create user")
	}

	a.logger.Info("registered internal identity %s", username)
	return created, nil
}

// FindInternalCredential returns the first internal account in link order.
// ErrNoInternalAccount only means password login is unavailable; external
// only identities are perfectly valid.
func (a *Accounts) FindInternalCredential(user *User) (*LinkedAccount, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}
	account, ok := user.InternalAccount()
	if !ok {
		return nil, ErrNoInternalAccount
	}
	return account, nil
}

// LinkExternal binds (provider, externalUID) to the user. Re-linking the
// same pair to the same user is a no-op; a pair owned by anyone else fails
// with ErrAccountAlreadyLinked.
func (a *Accounts) LinkExternal(ctx context.Context, user *User, provider, externalUID string) (*User, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}

	if existing, ok := user.ExternalAccount(provider, externalUID); ok && existing != nil {
		return user, nil
	}

	owner, err := a.store.FindByExternalID(ctx, provider, externalUID)
	if err == nil && owner != nil {
		if owner.ID == user.ID {
			return owner, nil
		}
		return nil, ErrAccountAlreadyLinked
	}
	if err != nil && !goerrors.IsNotFound(err) {
		return nil, WrapStoreErr(err, "failed to look up external account")
	}

	account, err := NewExternalAccount(provider, externalUID)
	if err != nil {
		return nil, err
	}

	updated, err := a.store.SaveLinkedAccount(ctx, user, account)
	if err != nil {
		return nil, WrapStoreErr(err, "failed to link external account")
	}

	a.logger.Info("linked %s account to %s", provider, user.Username)
	return updated, nil
}

// FindOrCreateByExternalIdentity resolves a provider identity to its owning
// user, creating a fresh identity seeded from the profile on first login.
// Seed username and email must still be unique; a collision with an
// unrelated identity fails with ErrDuplicateIdentity.
func (a *Accounts) FindOrCreateByExternalIdentity(ctx context.Context, provider, externalUID string, profile *ExternalProfile) (*User, error) {
	if provider == "" || externalUID == "" {
		return nil, ErrNoEmptyString
	}

	user, err := a.store.FindByExternalID(ctx, provider, externalUID)
	if err == nil && user != nil {
		return user, nil
	}
	if err != nil && !goerrors.IsNotFound(err) {
		return nil, WrapStoreErr(err, "failed to look up external identity")
	}

	if profile == nil {
		return nil, ErrIdentityNotFound
	}

	email := profile.Email
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	account, err := NewExternalAccount(provider, externalUID)
	if err != nil {
		return nil, err
	}

	seed := &User{
		Username: usernameFromProfile(profile),
		Email:    email,
		Role:     DefaultRole,
		Accounts: []*LinkedAccount{account},
	}

	created, err := a.store.CreateUser(ctx, seed)
	if err != nil {
		return nil, WrapStoreErr(err, "failed to create identity from provider profile")
	}

	a.logger.Info("created identity %s from %s profile", created.Username, provider)
	return created, nil
}

func usernameFromProfile(profile *ExternalProfile) string {
	if profile.Username != "" {
		return profile.Username
	}
	if strings.Contains(profile.Email, "@") {
		return strings.Split(profile.Email, "@")[0]
	}
	return profile.Provider + "-" + profile.ExternalUID
}
