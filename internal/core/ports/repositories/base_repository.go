package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReadScope controls whether soft-deleted rows are visible to a read.
// Every reader excludes deleted rows unless IncludeDeleted is passed explicitly.
type ReadScope int

const (
	ExcludeDeleted ReadScope = iota
	IncludeDeleted
)

// LedgerWriter is the atomic balance primitive. ApplyDeltas adds each delta to the
// wallet's stored balance in a single storage-level increment per wallet. A wallet that
// does not exist fails with apperrors.ErrNotFound. Storage errors are returned unchanged.
type LedgerWriter interface {
	ApplyDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error
}

// UnitOfWork runs fn as one atomic unit. The RepositoryProvider passed to fn is bound to
// the unit; anything written through it commits or is undone together.
//
// Domain errors returned by fn are passed through unchanged once the unit is undone.
// Any other failure, including a failed commit or a failed compensation, is reported
// wrapped in apperrors.ErrConsistency.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, repos RepositoryProvider) error) error

	// Transactional reports whether the backend provides real multi-row transactions.
	// False means units run sequentially with compensating reverts on failure.
	Transactional() bool
}
