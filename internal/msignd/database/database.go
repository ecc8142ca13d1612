// Package database provides utilities for database operations
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	merrors "github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/migrations"
)

// Tx wraps a database transaction with additional functionality
type Tx struct {
	*sql.Tx
}

// TxOptions defines options for transaction execution
type TxOptions struct {
	// Isolation sets the transaction isolation level
	Isolation sql.IsolationLevel
	// ReadOnly indicates if the transaction is read-only
	ReadOnly bool
}

// Connect opens a connection pool, pings it with retries, and applies
// pending schema migrations. Retries cover the common case of the database
// container still starting up.
func Connect(connStr string, maxAttempts int, retryDelay time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	var pingErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if pingErr = db.Ping(); pingErr == nil {
			break
		}
		time.Sleep(retryDelay)
	}
	if pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database after %d attempts: %w", maxAttempts, pingErr)
	}

	if err := migrations.NewManager(db).Apply(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	return db, nil
}

// RunInTx executes a function within a transaction
func RunInTx(ctx context.Context, db *sql.DB, opts *TxOptions, fn func(*Tx) error) error {
	var txOpts *sql.TxOptions
	if opts != nil {
		txOpts = &sql.TxOptions{
			Isolation: opts.Isolation,
			ReadOnly:  opts.ReadOnly,
		}
	}

	tx, err := db.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	wtx := &Tx{Tx: tx}

	if err := fn(wtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// MapError converts database-specific errors to domain errors
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return merrors.NewError(
				"CONFLICT",
				"resource already exists",
				op,
				merrors.ErrConflict,
			)
		case "23503": // foreign_key_violation
			return merrors.NewError(
				"NOT_FOUND",
				"referenced resource not found",
				op,
				merrors.ErrNotFound,
			)
		case "23514": // check_violation
			return merrors.NewError(
				"INVALID_INPUT",
				pqErr.Message,
				op,
				merrors.ErrInvalidInput,
			)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return merrors.NewError(
			"NOT_FOUND",
			"resource not found",
			op,
			merrors.ErrNotFound,
		)
	}

	return merrors.NewError(
		"UNAVAILABLE",
		"database error",
		op,
		fmt.Errorf("%w: %v", merrors.ErrUnavailable, err),
	)
}
