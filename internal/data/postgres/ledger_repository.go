// Package postgres provides the PostgreSQL implementation of the ledger
// store. Rows are append-only and ordered by a serial key so the last
// inserted row is always the one a delete removes.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/expense-ledger-bot/internal/domain/ledger"
	"github.com/expense-ledger-bot/internal/platform/persistence"
)

// LedgerRepository implements the ledger.Store interface for PostgreSQL
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger store backed by the
// connection pool.
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Store {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Append inserts a transaction as the newest ledger row.
func (r *LedgerRepository) Append(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO ledger_entries (recorded_at, foreign_amount, rate, converted_amount)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.querier.Exec(ctx, query,
		tx.Timestamp,
		tx.ForeignAmount,
		tx.Rate,
		tx.ConvertedAmount,
	)
	if err != nil {
		r.logger.Error("Failed to append ledger entry", "error", err)
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// ReadAll returns every ledger row in insertion order.
func (r *LedgerRepository) ReadAll(ctx context.Context) ([]ledger.Transaction, error) {
	query := `
		SELECT recorded_at, foreign_amount, rate, converted_amount
		FROM ledger_entries
		ORDER BY id
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to read ledger entries", "error", err)
		return nil, fmt.Errorf("failed to read ledger entries: %w", err)
	}
	defer rows.Close()

	records := []ledger.Transaction{}
	for rows.Next() {
		var tx ledger.Transaction
		if err := rows.Scan(&tx.Timestamp, &tx.ForeignAmount, &tx.Rate, &tx.ConvertedAmount); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		records = append(records, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return records, nil
}

// DeleteLast removes the newest ledger row and returns it. Returns
// ledger.ErrEmptyLedger when the table is empty.
func (r *LedgerRepository) DeleteLast(ctx context.Context) (*ledger.Transaction, error) {
	query := `
		DELETE FROM ledger_entries
		WHERE id = (SELECT max(id) FROM ledger_entries)
		RETURNING recorded_at, foreign_amount, rate, converted_amount
	`

	var tx ledger.Transaction
	err := r.querier.QueryRow(ctx, query).Scan(&tx.Timestamp, &tx.ForeignAmount, &tx.Rate, &tx.ConvertedAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEmptyLedger
		}
		r.logger.Error("Failed to delete last ledger entry", "error", err)
		return nil, fmt.Errorf("failed to delete last ledger entry: %w", err)
	}

	return &tx, nil
}
