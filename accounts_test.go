package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-multiauth"
	"github.com/goliatone/go-multiauth/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts_CreateInternal(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	accounts := auth.NewAccounts(store)

	user, err := accounts.CreateInternal(ctx, "shyam-chen", "shyam.chen@gmail.com", "3345678")
	require.NoError(t, err)
	assert.Equal(t, "shyam-chen", user.Username)
	assert.Equal(t, "shyam.chen@gmail.com", user.Email)
	assert.Equal(t, auth.DefaultRole, user.Role)
	assert.NotEqual(t, "", user.ID.String())

	account, ok := user.InternalAccount()
	require.True(t, ok)
	assert.NotEmpty(t, account.PasswordHash)
	// stored hash must verify the original password
	assert.NoError(t, auth.ComparePasswordAndHash("3345678", account.PasswordHash))

	t.Run("duplicate username", func(t *testing.T) {
		_, err := accounts.CreateInternal(ctx, "shyam-chen", "other@example.com", "3345678")
		require.Error(t, err)
		assert.True(t, auth.IsDuplicateIdentityError(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := accounts.CreateInternal(ctx, "someone-else", "shyam.chen@gmail.com", "3345678")
		require.Error(t, err)
		assert.True(t, auth.IsDuplicateIdentityError(err))
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := accounts.CreateInternal(ctx, "new-user", "not-an-email", "3345678")
		assert.ErrorIs(t, err, auth.ErrInvalidEmailFormat)
	})

	t.Run("password floor applies when configured", func(t *testing.T) {
		auth.MinPasswordLength = 8
		defer func() { auth.MinPasswordLength = 0 }()

		_, err := accounts.CreateInternal(ctx, "new-user", "new.user@example.com", "short")
		assert.Error(t, err)
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := accounts.CreateInternal(ctx, "new-user", "new.user@example.com", "")
		assert.Error(t, err)
	})
}

func TestAccounts_FindInternalCredential(t *testing.T) {
	accounts := auth.NewAccounts(repository.NewMemoryStore())

	t.Run("nil user", func(t *testing.T) {
		_, err := accounts.FindInternalCredential(nil)
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})

	t.Run("external only identity", func(t *testing.T) {
		external, err := auth.NewExternalAccount("google", "uid-123")
		require.NoError(t, err)

		_, err = accounts.FindInternalCredential(&auth.User{
			Accounts: []*auth.LinkedAccount{external},
		})
		assert.ErrorIs(t, err, auth.ErrNoInternalAccount)
	})

	t.Run("internal account present", func(t *testing.T) {
		internal, err := auth.NewInternalAccount("$2a$12$fakehash")
		require.NoError(t, err)

		account, err := accounts.FindInternalCredential(&auth.User{
			Accounts: []*auth.LinkedAccount{internal},
		})
		require.NoError(t, err)
		assert.Equal(t, internal, account)
	})
}

func TestAccounts_LinkExternal(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	accounts := auth.NewAccounts(store)

	owner, err := accounts.CreateInternal(ctx, "shyam-chen", "shyam.chen@gmail.com", "3345678")
	require.NoError(t, err)

	t.Run("first link", func(t *testing.T) {
		updated, err := accounts.LinkExternal(ctx, owner, "google", "uid-123")
		require.NoError(t, err)

		_, ok := updated.ExternalAccount("google", "uid-123")
		assert.True(t, ok)
		// internal account stays first in link order
		first, ok := updated.InternalAccount()
		require.True(t, ok)
		assert.Equal(t, updated.Accounts[0], first)
	})

	t.Run("re-link is a no-op", func(t *testing.T) {
		fresh, err := store.GetByUsername(ctx, "shyam-chen")
		require.NoError(t, err)
		before := len(fresh.Accounts)

		updated, err := accounts.LinkExternal(ctx, fresh, "google", "uid-123")
		require.NoError(t, err)
		assert.Len(t, updated.Accounts, before)
	})

	t.Run("pair owned by another identity", func(t *testing.T) {
		other, err := accounts.CreateInternal(ctx, "someone-else", "someone.else@example.com", "3345678")
		require.NoError(t, err)

		_, err = accounts.LinkExternal(ctx, other, "google", "uid-123")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrAccountAlreadyLinked)
	})

	t.Run("same provider different uid", func(t *testing.T) {
		fresh, err := store.GetByUsername(ctx, "shyam-chen")
		require.NoError(t, err)

		updated, err := accounts.LinkExternal(ctx, fresh, "google", "uid-456")
		require.NoError(t, err)
		_, ok := updated.ExternalAccount("google", "uid-456")
		assert.True(t, ok)
	})

	t.Run("nil user", func(t *testing.T) {
		_, err := accounts.LinkExternal(ctx, nil, "google", "uid-789")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

func TestAccounts_FindOrCreateByExternalIdentity(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	accounts := auth.NewAccounts(store)

	profile := &auth.ExternalProfile{
		Provider:      "google",
		ExternalUID:   "uid-123",
		Email:         "shyam.chen@gmail.com",
		EmailVerified: true,
		Name:          "Shyam Chen",
	}

	t.Run("first login creates an identity", func(t *testing.T) {
		user, err := accounts.FindOrCreateByExternalIdentity(ctx, "google", "uid-123", profile)
		require.NoError(t, err)
		// username derived from the email local part
		assert.Equal(t, "shyam.chen", user.Username)
		assert.Equal(t, "shyam.chen@gmail.com", user.Email)
		assert.Equal(t, auth.DefaultRole, user.Role)

		_, ok := user.ExternalAccount("google", "uid-123")
		assert.True(t, ok)
	})

	t.Run("second login resolves the same identity", func(t *testing.T) {
		first, err := accounts.FindOrCreateByExternalIdentity(ctx, "google", "uid-123", profile)
		require.NoError(t, err)

		second, err := accounts.FindOrCreateByExternalIdentity(ctx, "google", "uid-123", nil)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("profile username wins over email", func(t *testing.T) {
		user, err := accounts.FindOrCreateByExternalIdentity(ctx, "github", "gh-1", &auth.ExternalProfile{
			Provider:    "github",
			ExternalUID: "gh-1",
			Email:       "dev@example.com",
			Username:    "octocat",
		})
		require.NoError(t, err)
		assert.Equal(t, "octocat", user.Username)
	})

	t.Run("seed email collision", func(t *testing.T) {
		_, err := accounts.FindOrCreateByExternalIdentity(ctx, "facebook", "fb-1", &auth.ExternalProfile{
			Provider:    "facebook",
			ExternalUID: "fb-1",
			Email:       "shyam.chen@gmail.com",
			Username:    "shyam-facebook",
		})
		require.Error(t, err)
		assert.True(t, auth.IsDuplicateIdentityError(err))
	})

	t.Run("missing profile on first login", func(t *testing.T) {
		_, err := accounts.FindOrCreateByExternalIdentity(ctx, "google", "never-seen", nil)
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})

	t.Run("empty provider or uid", func(t *testing.T) {
		_, err := accounts.FindOrCreateByExternalIdentity(ctx, "", "uid", profile)
		assert.Error(t, err)

		_, err = accounts.FindOrCreateByExternalIdentity(ctx, "google", "", profile)
		assert.Error(t, err)
	})
}
