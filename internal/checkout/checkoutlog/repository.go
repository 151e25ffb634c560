package checkoutlog

import "context"

// Repository persists checkout log entries. The engine depends on this
// abstraction, not on SQLite directly, so tests can use an in-memory
// implementation.
type Repository interface {
	// Save appends a new entry. The log is append-only, never an upsert.
	Save(ctx context.Context, entry *Entry) error

	// GetLatest returns the most recent entry for a checkout ID.
	GetLatest(ctx context.Context, checkoutID string) (*Entry, error)
}
