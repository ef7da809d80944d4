package db

import (
	"context"
	"database/sql"
)

const accountsMigration = `
CREATE TABLE IF NOT EXISTS connected_accounts (
    row_id text PRIMARY KEY,
    account_id text NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT NOW()
);
`

func RunAccountsMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, accountsMigration)
	return err
}
