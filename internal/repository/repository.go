// Package repository holds the Postgres implementations of the stores the
// billing, ledger, invoicing, notification and calendar code depend on.
package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
	ierr "github.com/trainerdesk/backend/internal/errors"
)

const uniqueViolation = "23505"

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dbError classifies a driver error into the service taxonomy.
func dbError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithMessage(msg).
			WithHint("Resource not found").
			Mark(ierr.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ierr.WithError(err).
			WithMessage(msg).
			WithReportableDetails(map[string]any{"constraint": pqErr.Constraint}).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).WithMessage(msg).Mark(ierr.ErrDatabase)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
