// Package sqlite is the SQLite-backed checkoutlog.Repository. WAL mode is
// enabled so the status endpoint can read while a checkout goroutine writes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tanush1852/FreshMart/internal/checkout/checkoutlog"

	// Pure-Go SQLite driver; no CGO, builds cleanly on Alpine images.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Order ID. Not UNIQUE: one row per state transition.
    checkout_id     TEXT        NOT NULL,

    status          TEXT        NOT NULL,
    current_step    TEXT        NOT NULL DEFAULT '',

    -- JSON checkout input, written once on STARTED.
    payload         TEXT,

    error_messages  TEXT        NOT NULL DEFAULT '[]',

    -- W3C trace/span IDs from the active OTel span.
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT, the SQLite idiom.
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_logs_checkout_id ON checkout_logs(checkout_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_trace_id ON checkout_logs(trace_id);
`

type Repository struct {
	db *sql.DB
}

var _ checkoutlog.Repository = (*Repository)(nil)

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer connection; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new log entry. Safe for concurrent use.
func (r *Repository) Save(ctx context.Context, entry *checkoutlog.Entry) error {
	const q = `
		INSERT INTO checkout_logs
			(checkout_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.CheckoutID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		// Fixed-width nanoseconds keep lexical order equal to time order,
		// which the ORDER BY in GetLatest relies on.
		entry.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save checkout log for %q: %w", entry.CheckoutID, err)
	}
	return nil
}

// GetLatest returns the most recent entry for a checkout ID.
func (r *Repository) GetLatest(ctx context.Context, checkoutID string) (*checkoutlog.Entry, error) {
	const q = `
		SELECT checkout_id, status, current_step, COALESCE(payload,''), error_messages,
		       trace_id, span_id, updated_at
		FROM   checkout_logs
		WHERE  checkout_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, checkoutID)

	var entry checkoutlog.Entry
	var updatedAt string
	err := row.Scan(
		&entry.CheckoutID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: checkout %q not found", checkoutID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", checkoutID, err)
	}

	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// nullableString maps "" to NULL so non-STARTED rows keep a clean payload column.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
