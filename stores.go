package auth

import "context"

// UserStore is the identity store contract this package depends on. The
// store owns persistence and uniqueness: CreateUser must be atomic
// create-if-absent on username and email, and SaveLinkedAccount on
// (provider, external uid). Two registrations racing on the same username
// must yield one success and one ErrDuplicateIdentity, never two successes.
//
// Lookups return ErrIdentityNotFound when no record matches. Any other
// failure is a store fault and surfaces to the caller untouched; this
// package never retries.
type UserStore interface {
	// GetByUsername loads a user and its linked accounts by exact username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByIdentifier loads a user by username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)

	// FindByExternalID loads the user owning a linked account with the given
	// provider identity.
	FindByExternalID(ctx context.Context, provider, externalUID string) (*User, error)

	// CreateUser persists a new user with its initial linked accounts.
	// Username or email collisions fail with ErrDuplicateIdentity.
	CreateUser(ctx context.Context, user *User) (*User, error)

	// SaveLinkedAccount appends an account to an existing user. A
	// (provider, external uid) pair owned by a different user fails with
	// ErrAccountAlreadyLinked; re-saving the same pair for the same user is
	// a no-op.
	SaveLinkedAccount(ctx context.Context, user *User, account *LinkedAccount) (*User, error)
}
