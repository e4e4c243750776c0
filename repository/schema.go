package repository

import (
	"context"

	auth "github.com/goliatone/go-multiauth"
	"github.com/uptrace/bun"
)

// CreateSchema creates the users and linked_accounts tables with the unique
// indexes the store relies on. Meant for sqlite backed tests and small
// deployments; production setups own their migrations.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	if _, err := db.NewCreateTable().
		Model((*auth.LinkedAccount)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	// Internal accounts all carry empty provider/uid, so the uniqueness
	// constraint only covers external rows.
	if _, err := db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS
		idx_linked_accounts_provider_uid
		ON linked_accounts (provider, external_uid)
		WHERE provider <> ''`); err != nil {
		return err
	}

	return nil
}
