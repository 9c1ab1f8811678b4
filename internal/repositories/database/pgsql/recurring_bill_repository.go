package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

const recurringBillColumns = `bill_id, user_id, wallet_id, category_id, name, amount, type, frequency, next_run,
	last_paid_at, ends_at, is_active, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type recurringBillRepository struct {
	BaseRepository
}

var _ portsrepo.RecurringBillRepositoryFacade = (*recurringBillRepository)(nil)

var errBillNotFound = apperrors.NewNotFoundError("recurring bill not found")

func scanRecurringBill(row pgx.Row) (*domain.RecurringBill, error) {
	var b domain.RecurringBill
	err := row.Scan(
		&b.BillID, &b.UserID, &b.WalletID, &b.CategoryID, &b.Name, &b.Amount, &b.Type, &b.Frequency, &b.NextRun,
		&b.LastPaidAt, &b.EndsAt, &b.IsActive, &b.DeletedAt, &b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *recurringBillRepository) FindBillByID(ctx context.Context, userID, billID string) (*domain.RecurringBill, error) {
	return r.find(ctx, userID, billID, "")
}

func (r *recurringBillRepository) FindBillForUpdate(ctx context.Context, userID, billID string) (*domain.RecurringBill, error) {
	return r.find(ctx, userID, billID, " FOR UPDATE")
}

func (r *recurringBillRepository) find(ctx context.Context, userID, billID, lock string) (*domain.RecurringBill, error) {
	query := `SELECT ` + recurringBillColumns + ` FROM recurring_bills WHERE bill_id = $1 AND user_id = $2 AND deleted_at IS NULL` + lock
	b, err := scanRecurringBill(r.DB.QueryRow(ctx, query, billID, userID))
	if err != nil {
		return nil, mapReadError(err, errBillNotFound, "recurring bill")
	}
	return b, nil
}

func (r *recurringBillRepository) ListDueBills(ctx context.Context, now time.Time, limit int) ([]domain.RecurringBill, error) {
	query := `SELECT ` + recurringBillColumns + ` FROM recurring_bills
		WHERE is_active AND deleted_at IS NULL AND next_run <= $1
		ORDER BY next_run
		LIMIT $2`
	rows, err := r.DB.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("listing due bills: %w", err)
	}
	defer rows.Close()

	bills := []domain.RecurringBill{}
	for rows.Next() {
		b, err := scanRecurringBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recurring bill: %w", err)
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

func (r *recurringBillRepository) SaveBill(ctx context.Context, b domain.RecurringBill) error {
	query := `
		INSERT INTO recurring_bills (` + recurringBillColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.DB.Exec(ctx, query,
		b.BillID, b.UserID, b.WalletID, b.CategoryID, b.Name, b.Amount, string(b.Type), string(b.Frequency), b.NextRun,
		b.LastPaidAt, b.EndsAt, b.IsActive, b.DeletedAt, b.CreatedAt, b.CreatedBy, b.LastUpdatedAt, b.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "recurring bill "+b.BillID)
	}
	return nil
}

// AdvanceSchedule is a compare-and-set on last_paid_at. Of two units paying the same
// period, the second one matches no row and fails.
func (r *recurringBillRepository) AdvanceSchedule(ctx context.Context, b domain.RecurringBill, prevLastPaidAt *time.Time) error {
	query := `
		UPDATE recurring_bills
		SET last_paid_at = $2, next_run = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE bill_id = $1 AND deleted_at IS NULL AND last_paid_at IS NOT DISTINCT FROM $7`
	tag, err := r.DB.Exec(ctx, query, b.BillID, b.LastPaidAt, b.NextRun, b.IsActive, b.LastUpdatedAt, b.LastUpdatedBy, prevLastPaidAt)
	if err != nil {
		return fmt.Errorf("advancing bill schedule: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM recurring_bills WHERE bill_id = $1 AND deleted_at IS NULL)`, b.BillID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking recurring bill: %w", err)
	}
	if !exists {
		return errBillNotFound
	}
	return apperrors.ErrAlreadyPaidThisPeriod
}
