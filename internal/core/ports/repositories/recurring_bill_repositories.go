package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
)

// RecurringBillReader defines read operations for recurring bills.
type RecurringBillReader interface {
	FindBillForUpdate(ctx context.Context, userID, billID string) (*domain.RecurringBill, error)
	FindBillByID(ctx context.Context, userID, billID string) (*domain.RecurringBill, error)

	// ListDueBills returns active bills whose next_run is at or before now, across all users.
	ListDueBills(ctx context.Context, now time.Time, limit int) ([]domain.RecurringBill, error)
}

// RecurringBillWriter defines write operations for recurring bills.
type RecurringBillWriter interface {
	SaveBill(ctx context.Context, bill domain.RecurringBill) error

	// AdvanceSchedule sets last_paid_at, next_run and is_active, but only if last_paid_at
	// still equals prevLastPaidAt. A lost race fails with ErrAlreadyPaidThisPeriod.
	AdvanceSchedule(ctx context.Context, bill domain.RecurringBill, prevLastPaidAt *time.Time) error
}

// RecurringBillRepositoryFacade combines all recurring bill repository interfaces.
type RecurringBillRepositoryFacade interface {
	RecurringBillReader
	RecurringBillWriter
}
