package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/trainerdesk/backend/internal/database"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/models"
)

// LedgerTx is the atomic unit a prepaid ledger write runs in: the profile
// row stays locked from LockProfile until the unit ends.
type LedgerTx interface {
	LockProfile(ctx context.Context, clientID string) (*models.ClientProfile, error)
	InsertTransaction(ctx context.Context, txn *models.PrepaidTransaction) error
	// UpdateBalance fails with ErrVersionConflict when version is stale.
	UpdateBalance(ctx context.Context, profileID string, balance decimal.Decimal, version int) error
}

type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(LedgerTx) error) error
	GetProfile(ctx context.Context, clientID string) (*models.ClientProfile, error)
	// ListTransactions returns one page newest first plus the total row count.
	ListTransactions(ctx context.Context, profileID string, limit, offset int) ([]models.PrepaidTransaction, int, error)
	SumTransactions(ctx context.Context, profileID string) (decimal.Decimal, error)
}

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) WithinTx(ctx context.Context, fn func(LedgerTx) error) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&pgLedgerTx{tx: tx})
	})
}

func (r *LedgerRepository) GetProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	return getClientProfile(ctx, r.db, clientID, false)
}

func (r *LedgerRepository) ListTransactions(ctx context.Context, profileID string, limit, offset int) ([]models.PrepaidTransaction, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM prepaid_transactions WHERE client_profile_id = $1`, profileID).Scan(&total); err != nil {
		return nil, 0, dbError(err, "count prepaid transactions")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_profile_id, amount, resulting_balance, COALESCE(notes, ''), created_at
		FROM prepaid_transactions
		WHERE client_profile_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, profileID, limit, offset)
	if err != nil {
		return nil, 0, dbError(err, "list prepaid transactions")
	}
	defer rows.Close()

	txns := make([]models.PrepaidTransaction, 0, limit)
	for rows.Next() {
		var t models.PrepaidTransaction
		if err := rows.Scan(&t.ID, &t.ClientProfileID, &t.Amount, &t.ResultingBalance, &t.Notes, &t.CreatedAt); err != nil {
			return nil, 0, dbError(err, "scan prepaid transaction")
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbError(err, "iterate prepaid transactions")
	}
	return txns, total, nil
}

func (r *LedgerRepository) SumTransactions(ctx context.Context, profileID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM prepaid_transactions WHERE client_profile_id = $1`, profileID).Scan(&sum)
	if err != nil {
		return decimal.Zero, dbError(err, "sum prepaid transactions")
	}
	return sum, nil
}

type pgLedgerTx struct {
	tx *sql.Tx
}

func (t *pgLedgerTx) LockProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	return getClientProfile(ctx, t.tx, clientID, true)
}

func (t *pgLedgerTx) InsertTransaction(ctx context.Context, txn *models.PrepaidTransaction) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO prepaid_transactions (id, client_profile_id, amount, resulting_balance, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		txn.ID, txn.ClientProfileID, txn.Amount, txn.ResultingBalance, txn.Notes, txn.CreatedAt)
	return dbError(err, "insert prepaid transaction")
}

func (t *pgLedgerTx) UpdateBalance(ctx context.Context, profileID string, balance decimal.Decimal, version int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE client_profiles
		SET prepaid_balance = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3`,
		balance, profileID, version)
	if err != nil {
		return dbError(err, "update prepaid balance")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return dbError(err, "update prepaid balance")
	}
	if rowsAffected == 0 {
		return ierr.NewError("optimistic lock failed").
			WithReportableDetails(map[string]any{"profile_id": profileID, "version": version}).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}
