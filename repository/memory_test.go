package repository_test

import (
	"context"
	"sync"
	"testing"

	auth "github.com/goliatone/go-multiauth"
	"github.com/goliatone/go-multiauth/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func internalUser(t *testing.T, username, email string) *auth.User {
	t.Helper()

	account, err := auth.NewInternalAccount("$2a$12$fakehash")
	require.NoError(t, err)

	return &auth.User{
		Username: username,
		Email:    email,
		Accounts: []*auth.LinkedAccount{account},
	}
}

func TestMemoryStore_CreateUser(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	created, err := store.CreateUser(ctx, internalUser(t, "shyam-chen", "shyam.chen@gmail.com"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, auth.DefaultRole, created.Role)
	require.Len(t, created.Accounts, 1)
	assert.Equal(t, created.ID, created.Accounts[0].UserID)
	assert.NotNil(t, created.CreatedAt)

	t.Run("username collision", func(t *testing.T) {
		_, err := store.CreateUser(ctx, internalUser(t, "shyam-chen", "other@example.com"))
		assert.ErrorIs(t, err, auth.ErrDuplicateIdentity)
	})

	t.Run("email collision is case insensitive", func(t *testing.T) {
		_, err := store.CreateUser(ctx, internalUser(t, "other-user", "SHYAM.CHEN@gmail.com"))
		assert.ErrorIs(t, err, auth.ErrDuplicateIdentity)
	})

	t.Run("external pair collision", func(t *testing.T) {
		account, err := auth.NewExternalAccount("google", "uid-123")
		require.NoError(t, err)
		_, err = store.CreateUser(ctx, &auth.User{
			Username: "first-owner",
			Email:    "first.owner@example.com",
			Accounts: []*auth.LinkedAccount{account},
		})
		require.NoError(t, err)

		dupe, err := auth.NewExternalAccount("google", "uid-123")
		require.NoError(t, err)
		_, err = store.CreateUser(ctx, &auth.User{
			Username: "second-owner",
			Email:    "second.owner@example.com",
			Accounts: []*auth.LinkedAccount{dupe},
		})
		assert.ErrorIs(t, err, auth.ErrAccountAlreadyLinked)
	})

	t.Run("invalid linked account rejected", func(t *testing.T) {
		_, err := store.CreateUser(ctx, &auth.User{
			Username: "bad-account",
			Email:    "bad.account@example.com",
			Accounts: []*auth.LinkedAccount{{Kind: auth.AccountKindInternal}},
		})
		assert.ErrorIs(t, err, auth.ErrInvalidLinkedAccount)
	})
}

func TestMemoryStore_Lookups(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	created, err := store.CreateUser(ctx, internalUser(t, "shyam-chen", "shyam.chen@gmail.com"))
	require.NoError(t, err)

	t.Run("by username", func(t *testing.T) {
		user, err := store.GetByUsername(ctx, "shyam-chen")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("by identifier username", func(t *testing.T) {
		user, err := store.GetByIdentifier(ctx, "shyam-chen")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("by identifier email", func(t *testing.T) {
		user, err := store.GetByIdentifier(ctx, "shyam.chen@gmail.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("missing username", func(t *testing.T) {
		_, err := store.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})

	t.Run("missing external id", func(t *testing.T) {
		_, err := store.FindByExternalID(ctx, "google", "never-seen")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

func TestMemoryStore_SaveLinkedAccount(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	owner, err := store.CreateUser(ctx, internalUser(t, "shyam-chen", "shyam.chen@gmail.com"))
	require.NoError(t, err)

	account, err := auth.NewExternalAccount("google", "uid-123")
	require.NoError(t, err)

	updated, err := store.SaveLinkedAccount(ctx, owner, account)
	require.NoError(t, err)
	require.Len(t, updated.Accounts, 2)

	t.Run("resolvable by external id", func(t *testing.T) {
		found, err := store.FindByExternalID(ctx, "google", "uid-123")
		require.NoError(t, err)
		assert.Equal(t, owner.ID, found.ID)
	})

	t.Run("same pair same user is a no-op", func(t *testing.T) {
		again, err := auth.NewExternalAccount("google", "uid-123")
		require.NoError(t, err)

		result, err := store.SaveLinkedAccount(ctx, owner, again)
		require.NoError(t, err)
		assert.Len(t, result.Accounts, 2)
	})

	t.Run("pair owned elsewhere conflicts", func(t *testing.T) {
		other, err := store.CreateUser(ctx, internalUser(t, "other-user", "other.user@example.com"))
		require.NoError(t, err)

		conflicting, err := auth.NewExternalAccount("google", "uid-123")
		require.NoError(t, err)

		_, err = store.SaveLinkedAccount(ctx, other, conflicting)
		assert.ErrorIs(t, err, auth.ErrAccountAlreadyLinked)
	})

	t.Run("unknown user", func(t *testing.T) {
		fresh, err := auth.NewExternalAccount("github", "gh-1")
		require.NoError(t, err)

		_, err = store.SaveLinkedAccount(ctx, &auth.User{ID: uuid.New()}, fresh)
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	created, err := store.CreateUser(ctx, internalUser(t, "shyam-chen", "shyam.chen@gmail.com"))
	require.NoError(t, err)

	// mutating a returned record must not leak into the store
	created.Username = "mutated"
	created.Accounts[0].PasswordHash = "mutated"

	fresh, err := store.GetByUsername(ctx, "shyam-chen")
	require.NoError(t, err)
	assert.Equal(t, "shyam-chen", fresh.Username)
	assert.Equal(t, "$2a$12$fakehash", fresh.Accounts[0].PasswordHash)
}

func TestMemoryStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.CreateUser(ctx, internalUser(t, "shyam-chen", "shyam.chen@gmail.com"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestMemoryStore_RemoveUser(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	_, err := store.CreateUser(ctx, internalUser(t, "shyam-chen", "shyam.chen@gmail.com"))
	require.NoError(t, err)

	store.RemoveUser("shyam-chen")

	_, err = store.GetByUsername(ctx, "shyam-chen")
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)

	// removing frees the username and email reservations
	_, err = store.CreateUser(ctx, internalUser(t, "shyam-chen", "shyam.chen@gmail.com"))
	assert.NoError(t, err)
}
