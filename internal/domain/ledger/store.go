package ledger

import (
	"context"
	"errors"
)

// ErrEmptyLedger indicates DeleteLast was invoked with zero data rows present.
var ErrEmptyLedger = errors.New("ledger has no records")

// Store manages the single configured ledger. Rows are append-only and keep
// insertion order; the backing store's header row is never exposed as data.
type Store interface {
	// Append adds one transaction after the last existing row. Existing
	// rows are never reordered.
	Append(ctx context.Context, tx *Transaction) error

	// ReadAll returns every data row in stored order. An empty ledger
	// yields an empty slice, not an error.
	ReadAll(ctx context.Context) ([]Transaction, error)

	// DeleteLast removes the most recently appended row and returns the
	// removed value. Returns ErrEmptyLedger without mutating anything
	// when the ledger has no data rows.
	DeleteLast(ctx context.Context) (*Transaction, error)
}
