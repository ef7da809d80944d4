package mapping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nmbr1stnr/tipsandtrim/internal/db"
)

// PostgresStore keeps the table in connected_accounts. Put is a single
// upsert statement, so concurrent writers cannot overwrite each other's rows.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context) (Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_id, account_id FROM connected_accounts
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	m := Mapping{}
	for rows.Next() {
		var rowID, accountID string
		if err := rows.Scan(&rowID, &accountID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		m[rowID] = accountID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return m, nil
}

func (s *PostgresStore) Put(ctx context.Context, rowID, accountID string) error {
	if rowID == "" || accountID == "" {
		return fmt.Errorf("mapping: missing row_id or account_id")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO connected_accounts (row_id, account_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (row_id)
		DO UPDATE SET account_id = EXCLUDED.account_id, updated_at = NOW()
	`, rowID, accountID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, rowID string) (string, error) {
	var accountID string
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id FROM connected_accounts
		WHERE row_id = $1
	`, rowID).Scan(&accountID)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return accountID, nil
}
