package mapping

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("mapping: not found")
	ErrStorageUnavailable = errors.New("mapping: storage unavailable")
)

// Mapping is the forward table, external row id -> processor account id.
type Mapping map[string]string

// Store persists the row id to account id table.
// Put must be an exclusive update unit: concurrent puts for
// different rows must never lose each other.
type Store interface {
	// Load returns a copy of the whole table, creating it empty
	// if it does not exist yet.
	Load(ctx context.Context) (Mapping, error)

	// Put sets rowID -> accountID, overwriting any earlier mapping.
	Put(ctx context.Context, rowID, accountID string) error

	// Get returns the account id for rowID or ErrNotFound.
	Get(ctx context.Context, rowID string) (string, error)
}

// FindRowByAccount scans m for the row mapped to accountID. Which row
// wins when several share an account is undefined.
func FindRowByAccount(m Mapping, accountID string) (string, bool) {
	for rowID, id := range m {
		if id == accountID {
			return rowID, true
		}
	}
	return "", false
}
