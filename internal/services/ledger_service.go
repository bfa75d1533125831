package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trainerdesk/backend/internal/audit"
	"github.com/trainerdesk/backend/internal/config"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/repository"
)

const (
	EntryCredit = "PREPAID_CREDIT"
	EntryDebit  = "PREPAID_DEBIT"

	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PrepaidLedger moves money in and out of a client's prepaid balance. Every
// write appends one prepaid transaction and updates the balance in the same
// atomic unit, so the balance always equals the sum of the log.
type PrepaidLedger struct {
	store      repository.LedgerStore
	policy     config.InsufficientBalancePolicy
	maxRetries uint64
	audit      *audit.AuditLogger
	logger     *logger.Logger
	now        func() time.Time
}

func NewPrepaidLedger(store repository.LedgerStore, cfg config.LedgerConfig, auditLogger *audit.AuditLogger, log *logger.Logger) *PrepaidLedger {
	return &PrepaidLedger{
		store:      store,
		policy:     cfg.InsufficientBalancePolicy,
		maxRetries: cfg.MaxLockRetries,
		audit:      auditLogger,
		logger:     log,
		now:        time.Now,
	}
}

// Reconciliation compares the stored balance with the ledger sum.
type Reconciliation struct {
	ClientID  string          `json:"clientId"`
	Balance   decimal.Decimal `json:"balance"`
	LedgerSum decimal.Decimal `json:"ledgerSum"`
	InBalance bool            `json:"inBalance"`
}

func (l *PrepaidLedger) AddCredit(ctx context.Context, clientID string, amount decimal.Decimal, notes string) (*models.PrepaidTransaction, error) {
	if !amount.IsPositive() {
		return nil, ierr.NewError("credit amount must be positive").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{"amount": amount.String()}).
			Mark(ierr.ErrValidation)
	}
	return l.apply(ctx, clientID, amount, notes, EntryCredit)
}

// Consume debits the prepaid balance. Whether a debit may overdraw is
// decided by the configured insufficient-balance policy.
func (l *PrepaidLedger) Consume(ctx context.Context, clientID string, amount decimal.Decimal, notes string) (*models.PrepaidTransaction, error) {
	if !amount.IsPositive() {
		return nil, ierr.NewError("debit amount must be positive").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{"amount": amount.String()}).
			Mark(ierr.ErrValidation)
	}
	return l.apply(ctx, clientID, amount.Neg(), notes, EntryDebit)
}

func (l *PrepaidLedger) apply(ctx context.Context, clientID string, delta decimal.Decimal, notes, entryType string) (*models.PrepaidTransaction, error) {
	var txn *models.PrepaidTransaction

	op := func() error {
		err := l.store.WithinTx(ctx, func(tx repository.LedgerTx) error {
			profile, err := tx.LockProfile(ctx, clientID)
			if err != nil {
				return err
			}

			balance := profile.PrepaidBalance.Add(delta)
			if delta.IsNegative() && balance.IsNegative() && l.policy != config.PolicyAllowNegative {
				return ierr.NewError("insufficient prepaid balance").
					WithHintf("Prepaid balance %s does not cover %s", profile.PrepaidBalance.StringFixed(2), delta.Neg().StringFixed(2)).
					WithReportableDetails(map[string]any{
						"balance": profile.PrepaidBalance.String(),
						"amount":  delta.Neg().String(),
					}).
					Mark(ierr.ErrInsufficientBalance)
			}

			entry := &models.PrepaidTransaction{
				ID:               uuid.NewString(),
				ClientProfileID:  profile.ID,
				Amount:           delta,
				ResultingBalance: balance,
				Notes:            notes,
				CreatedAt:        l.now(),
			}
			if err := tx.InsertTransaction(ctx, entry); err != nil {
				return err
			}
			if err := tx.UpdateBalance(ctx, profile.ID, balance, profile.Version); err != nil {
				return err
			}

			txn = entry
			return nil
		})

		if ierr.IsVersionConflict(err) {
			l.logger.Debugw("[LEDGER] version conflict, retrying", "client_id", clientID)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, l.maxRetries), ctx)); err != nil {
		l.logger.Warnw("[LEDGER] prepaid write failed",
			"client_id", clientID,
			"entry_type", entryType,
			"amount", delta.String(),
			"error", err,
		)
		l.audit.LogError(entryType, clientID, err)
		return nil, err
	}

	l.logger.Infow("[LEDGER] prepaid write committed",
		"client_id", clientID,
		"transaction_id", txn.ID,
		"amount", txn.Amount.String(),
		"balance", txn.ResultingBalance.String(),
	)
	l.audit.LogLedgerEntry(txn.ID, clientID, entryType, txn.Amount, txn.ResultingBalance)
	return txn, nil
}

// GetTransactions returns one page of the client's ledger, newest first.
// A zero limit means the default page size.
func (l *PrepaidLedger) GetTransactions(ctx context.Context, clientID string, limit, offset int) (*models.PrepaidTransactionPage, error) {
	if limit < 0 || offset < 0 {
		return nil, ierr.NewError("negative pagination").
			WithHint("limit and offset must not be negative").
			Mark(ierr.ErrValidation)
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	profile, err := l.store.GetProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}

	txns, total, err := l.store.ListTransactions(ctx, profile.ID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &models.PrepaidTransactionPage{
		Transactions: txns,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

func (l *PrepaidLedger) Reconcile(ctx context.Context, clientID string) (*Reconciliation, error) {
	profile, err := l.store.GetProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}

	sum, err := l.store.SumTransactions(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	rec := &Reconciliation{
		ClientID:  clientID,
		Balance:   profile.PrepaidBalance,
		LedgerSum: sum,
		InBalance: profile.PrepaidBalance.Equal(sum),
	}
	if !rec.InBalance {
		l.logger.Errorw("[LEDGER] balance drift detected",
			"client_id", clientID,
			"balance", rec.Balance.String(),
			"ledger_sum", rec.LedgerSum.String(),
		)
	}
	return rec, nil
}
