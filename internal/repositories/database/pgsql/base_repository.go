package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx. Repositories built on the
// pool serve plain reads; repositories built on a pgx.Tx belong to one unit of work.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	DB DBTX
}

// Postgres error codes the repositories react to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsRetryable reports whether err is a serialization failure or deadlock, after which the
// whole unit may be run again.
func IsRetryable(err error) bool {
	switch pgErrorCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// mapWriteError turns constraint violations into domain errors and wraps the rest.
func mapWriteError(err error, what string) error {
	switch pgErrorCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, what)
	case codeForeignKeyViolation:
		return apperrors.NewNotFoundError(what + " references a missing record")
	case codeCheckViolation:
		return apperrors.NewValidationError(what + " violates a value constraint")
	}
	return fmt.Errorf("writing %s: %w", what, err)
}

// mapReadError returns notFound for pgx.ErrNoRows and wraps every other error.
func mapReadError(err error, notFound error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("reading %s: %w", what, err)
}

// rollback ends tx, ignoring the error pgx returns once the tx was already committed.
func rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rolling back: %w", err)
	}
	return nil
}
