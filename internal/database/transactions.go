package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const transactionColumns = `id, owner, name, payer, labels, amount, transaction_type, date, time,
	timezone, recurrence_rule, deleted_slots, location, created_at, updated_at`

// TransactionRepository handles ledger transaction template database operations
type TransactionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db, logger: zap.NewNop()}
}

// SetLogger sets the logger used for row-level diagnostics
func (r *TransactionRepository) SetLogger(logger *zap.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Upsert inserts a transaction template or replaces the stored one with the same ID
func (r *TransactionRepository) Upsert(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			name = EXCLUDED.name,
			payer = EXCLUDED.payer,
			labels = EXCLUDED.labels,
			amount = EXCLUDED.amount,
			transaction_type = EXCLUDED.transaction_type,
			date = EXCLUDED.date,
			time = EXCLUDED.time,
			timezone = EXCLUDED.timezone,
			recurrence_rule = EXCLUDED.recurrence_rule,
			deleted_slots = EXCLUDED.deleted_slots,
			location = EXCLUDED.location,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		txn.ID,
		txn.Owner,
		txn.Name,
		txn.Payer,
		pq.Array(nonNil(txn.Labels)),
		txn.Amount,
		string(txn.TransactionType),
		txn.Date,
		txn.Time,
		txn.Timezone,
		txn.RecurrenceRule,
		txn.DeletedSlots,
		txn.Location,
		time.Now().UTC(),
	).Scan(&txn.CreatedAt, &txn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves one transaction template of an owner
func (r *TransactionRepository) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner = $1 AND id = $2`

	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListByOwner retrieves every transaction template of an owner
func (r *TransactionRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed_to_close_transaction_rows", zap.Error(err))
		}
	}()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var kind string
	err := row.Scan(
		&txn.ID,
		&txn.Owner,
		&txn.Name,
		&txn.Payer,
		pq.Array(&txn.Labels),
		&txn.Amount,
		&kind,
		&txn.Date,
		&txn.Time,
		&txn.Timezone,
		&txn.RecurrenceRule,
		&txn.DeletedSlots,
		&txn.Location,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	txn.TransactionType = models.TransactionType(kind)
	return txn, nil
}
