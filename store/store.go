// Package store persists per-user transaction ledgers.
//
// Two implementations are provided: a file store writing one JSONL file per
// user, and a SQLite store keeping all users in a single database file. Both
// satisfy Store and both preserve the arrival order of transactions, which
// the replay engine relies on for same-day tie breaking.
package store

import (
	"errors"

	"stockfolio"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("store is closed")

// Store loads and saves one ledger per user.
//
// Load for an unknown user returns an empty ledger, not an error: a new user
// simply has no transactions yet. Save replaces the user's whole ledger.
type Store interface {
	// Load returns the user's transactions in arrival order.
	Load(userID string) (*stockfolio.Ledger, error)
	// Save replaces the user's ledger with the given one.
	Save(userID string, ledger *stockfolio.Ledger) error
	// Delete removes all data for the user. Deleting an unknown user is a
	// no-op.
	Delete(userID string) error
	// Users lists the user ids that currently have a ledger, sorted.
	Users() ([]string, error)
	// Close releases the store's resources.
	Close() error
}
