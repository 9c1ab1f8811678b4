package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
)

type recurringBillRepository struct {
	s    *Store
	undo *undoLog
}

var _ portsrepo.RecurringBillRepositoryFacade = (*recurringBillRepository)(nil)

func (r *recurringBillRepository) FindBillByID(ctx context.Context, userID, billID string) (*domain.RecurringBill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bills[billID]
	if !ok || b.UserID != userID || b.IsDeleted() {
		return nil, apperrors.NewNotFoundError("recurring bill not found")
	}
	return &b, nil
}

func (r *recurringBillRepository) FindBillForUpdate(ctx context.Context, userID, billID string) (*domain.RecurringBill, error) {
	return r.FindBillByID(ctx, userID, billID)
}

func (r *recurringBillRepository) ListDueBills(ctx context.Context, now time.Time, limit int) ([]domain.RecurringBill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	due := []domain.RecurringBill{}
	for _, b := range r.s.bills {
		if b.IsActive && !b.IsDeleted() && !b.NextRun.After(now) {
			due = append(due, b)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextRun.Before(due[j].NextRun) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *recurringBillRepository) SaveBill(ctx context.Context, bill domain.RecurringBill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.bills[bill.BillID]; exists {
		return fmt.Errorf("%w: recurring bill %s", apperrors.ErrDuplicate, bill.BillID)
	}
	r.s.bills[bill.BillID] = bill
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.bills, bill.BillID)
		return nil
	})
	return nil
}

func (r *recurringBillRepository) AdvanceSchedule(ctx context.Context, bill domain.RecurringBill, prevLastPaidAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpRecurringBillAdvance); err != nil {
		return err
	}
	cur, ok := r.s.bills[bill.BillID]
	if !ok || cur.IsDeleted() {
		return apperrors.NewNotFoundError("recurring bill not found")
	}
	if !sameInstant(cur.LastPaidAt, prevLastPaidAt) {
		return apperrors.ErrAlreadyPaidThisPeriod
	}
	prev := cur
	cur.LastPaidAt = bill.LastPaidAt
	cur.NextRun = bill.NextRun
	cur.IsActive = bill.IsActive
	cur.AuditFields = bill.AuditFields
	r.s.bills[bill.BillID] = cur
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.bills[bill.BillID] = prev
		return nil
	})
	return nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
