// Package repository provides UserStore implementations: a Bun backed SQL
// store and an in-memory store for tests and small deployments.
package repository

import (
	"context"
	"database/sql"
	"net/mail"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	auth "github.com/goliatone/go-multiauth"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the SQL backed identity store. The generic repository surface is
// exposed through Repo rather than embedded: its GetByIdentifier takes
// variadic select criteria, which would collide with the store contract's
// two-argument form.
type Users interface {
	auth.UserStore

	// Repo exposes the generic repository for criteria based queries.
	Repo() repository.Repository[*auth.User]
}

type users struct {
	repo repository.Repository[*auth.User]
	db   *bun.DB
}

var _ Users = (*users)(nil)

// NewUsers creates the Bun backed store. Uniqueness on username, email, and
// (provider, external_uid) is enforced by database constraints, which is
// what makes concurrent same-key registrations collapse to one winner.
func NewUsers(db *bun.DB) Users {
	repo := repository.NewRepository[*auth.User](db, repository.ModelHandlers[*auth.User]{
		NewRecord: func() *auth.User { return &auth.User{} },
		GetID: func(u *auth.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *auth.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		repo: repo,
		db:   db,
	}
}

func (r *users) Repo() repository.Repository[*auth.User] {
	return r.repo
}

func (r *users) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getOne(ctx, "username", strings.TrimSpace(username))
}

func (r *users) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	column := "username"
	trimmed := strings.TrimSpace(identifier)
	if _, err := mail.ParseAddress(trimmed); err == nil {
		column = "email"
	}
	return r.getOne(ctx, column, trimmed)
}

func (r *users) getOne(ctx context.Context, column, value string) (*auth.User, error) {
	record := &auth.User{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Accounts", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("lac.created_at ASC")
		}).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, auth.WrapStoreErr(err, "failed to load user")
	}

	return record, nil
}

func (r *users) FindByExternalID(ctx context.Context, provider, externalUID string) (*auth.User, error) {
	account := &auth.LinkedAccount{}
	err := r.db.NewSelect().
		Model(account).
		Where("?TableAlias.provider = ? AND ?TableAlias.external_uid = ?", provider, externalUID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, auth.WrapStoreErr(err, "failed to load linked account")
	}

	record := &auth.User{}
	err = r.db.NewSelect().
		Model(record).
		Relation("Accounts", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("lac.created_at ASC")
		}).
		Where("?TableAlias.id = ?", account.UserID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, auth.WrapStoreErr(err, "failed to load user for linked account")
	}

	return record, nil
}

func (r *users) CreateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	if user == nil {
		return nil, auth.ErrIdentityNotFound
	}

	user.EnsureRole()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return auth.ErrDuplicateIdentity
			}
			return err
		}

		for _, account := range user.Accounts {
			if err := account.Validate(); err != nil {
				return err
			}
			account.UserID = user.ID
			if account.ID == uuid.Nil {
				account.ID = uuid.New()
			}
			if _, err := tx.NewInsert().Model(account).Exec(ctx); err != nil {
				if isUniqueViolation(err) {
					return auth.ErrAccountAlreadyLinked
				}
				return err
			}
		}

		return nil
	})

	if err != nil {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			return nil, rich
		}
		return nil, auth.WrapStoreErr(err, "failed to create user")
	}

	return user, nil
}

func (r *users) SaveLinkedAccount(ctx context.Context, user *auth.User, account *auth.LinkedAccount) (*auth.User, error) {
	if user == nil || account == nil {
		return nil, auth.ErrIdentityNotFound
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	account.UserID = user.ID
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(account).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			// another identity owns this (provider, uid) pair, or this exact
			// link already exists; re-fetch to tell the two apart
			owner, lookupErr := r.FindByExternalID(ctx, account.Provider, account.ExternalUID)
			if lookupErr == nil && owner != nil && owner.ID == user.ID {
				return owner, nil
			}
			return nil, auth.ErrAccountAlreadyLinked
		}
		return nil, auth.WrapStoreErr(err, "failed to save linked account")
	}

	return r.GetByUsername(ctx, user.Username)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "constraint failed")
}
