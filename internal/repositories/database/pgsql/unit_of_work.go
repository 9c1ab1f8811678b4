package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/finance_tracker/internal/platform/resilience"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxUnitOfWork runs each unit in one database transaction. Row locks taken with
// SELECT ... FOR UPDATE are held until commit or rollback.
type PgxUnitOfWork struct {
	pool  *pgxpool.Pool
	retry resilience.Config
}

// NewPgxUnitOfWork creates a unit of work on pool. A unit that fails with a serialization
// failure or deadlock is run again up to maxRetries times; onRetry may be nil.
func NewPgxUnitOfWork(pool *pgxpool.Pool, maxRetries int, backoff time.Duration, onRetry func(attempt int, err error)) *PgxUnitOfWork {
	return &PgxUnitOfWork{
		pool: pool,
		retry: resilience.Config{
			MaxRetries:     maxRetries,
			InitialBackoff: backoff,
			Retryable:      IsRetryable,
			OnRetry:        onRetry,
		},
	}
}

var _ portsrepo.UnitOfWork = (*PgxUnitOfWork)(nil)

func (u *PgxUnitOfWork) Transactional() bool {
	return true
}

// Atomic commits fn's writes together or not at all. Domain errors from fn are returned
// as they are after the rollback; anything else is a consistency failure.
func (u *PgxUnitOfWork) Atomic(ctx context.Context, fn func(ctx context.Context, repos portsrepo.RepositoryProvider) error) error {
	err := resilience.RetryWithBackoff(ctx, u.retry, func() error {
		return u.runOnce(ctx, fn)
	})
	if err == nil || apperrors.IsDomainError(err) {
		return err
	}
	return apperrors.NewConsistencyError("unit aborted", err)
}

func (u *PgxUnitOfWork) runOnce(ctx context.Context, fn func(ctx context.Context, repos portsrepo.RepositoryProvider) error) (err error) {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("beginning unit: %w", err)
	}
	defer func() {
		if rerr := rollback(ctx, tx); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err := fn(ctx, NewRepositoryProvider(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing unit: %w", err)
	}
	return nil
}
