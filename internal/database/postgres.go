package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/trainerdesk/backend/internal/config"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
)

// InitDB opens the Postgres pool and verifies connectivity.
func InitDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, ierr.WithError(err).WithMessage("error opening database").Mark(ierr.ErrDatabase)
	}

	if err = db.Ping(); err != nil {
		return nil, ierr.WithError(err).WithMessage("error connecting to database").Mark(ierr.ErrDatabase)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.L.Info("Database connection established")
	return db, nil
}

// InitDatabase initializes the database or exits the process.
func InitDatabase(cfg config.DatabaseConfig) *sql.DB {
	db, err := InitDB(cfg)
	if err != nil {
		logger.L.Fatalf("Failed to initialize database: %v", err)
	}
	return db
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ierr.WithError(err).WithMessage("begin transaction").Mark(ierr.ErrDatabase)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).WithMessage("commit transaction").Mark(ierr.ErrDatabase)
	}
	return nil
}
