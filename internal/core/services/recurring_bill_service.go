package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/platform/observability"
	"github.com/SscSPs/finance_tracker/internal/utils/schedule"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// dueBillBatch caps how many due bills one sweep picks up.
const dueBillBatch = 500

// recurringBillService pays bills through the transaction engine. The payment, its wallet
// effect and the schedule advance are one unit, and the advance is a compare-and-set on
// last_paid_at, so two concurrent pays for the same period cannot both commit.
type recurringBillService struct {
	BaseService
	uow          portsrepo.UnitOfWork
	repos        portsrepo.RepositoryProvider
	transactions portssvc.TransactionUnitSvc
	concurrency  int
}

// NewRecurringBillService creates the recurring bill payer. concurrency bounds PayDueBills.
func NewRecurringBillService(repos portsrepo.RepositoryProvider, uow portsrepo.UnitOfWork, transactions portssvc.TransactionUnitSvc, concurrency int, opts ...Option) portssvc.RecurringBillSvcFacade {
	if concurrency < 1 {
		concurrency = 1
	}
	svc := &recurringBillService{uow: uow, repos: repos, transactions: transactions, concurrency: concurrency}
	svc.apply(opts)
	return svc
}

var _ portssvc.RecurringBillSvcFacade = (*recurringBillService)(nil)

func (s *recurringBillService) Pay(ctx context.Context, userID, billID string) (*domain.BillPayment, error) {
	payment, err := s.pay(ctx, userID, billID, s.now())
	if err != nil {
		s.logFailure(ctx, err, "Failed to pay recurring bill", slog.String("bill_id", billID))
		return nil, err
	}
	s.LogInfo(ctx, "Recurring bill paid",
		slog.String("bill_id", billID),
		slog.String("transaction_id", payment.Transaction.TransactionID),
		slog.Time("next_run", payment.Bill.NextRun))
	return payment, nil
}

func (s *recurringBillService) pay(ctx context.Context, userID, billID string, now time.Time) (payment *domain.BillPayment, err error) {
	ctx, span := tracer.Start(ctx, "RecurringBillService.pay")
	span.SetAttributes(attribute.String("bill.id", billID))
	defer func() { observability.EndSpan(span, err) }()

	err = s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		bill, err := repos.RecurringBillRepo.FindBillForUpdate(ctx, userID, billID)
		if err != nil {
			return err
		}
		if !bill.IsActive || bill.IsExpired(now) {
			return apperrors.ErrBillInactive
		}
		if bill.LastPaidAt != nil && schedule.SamePeriod(bill.Frequency, *bill.LastPaidAt, now) {
			return apperrors.ErrAlreadyPaidThisPeriod
		}

		refType := domain.RefRecurringBill
		refID := bill.BillID
		details, err := s.transactions.CreateInUnit(ctx, repos, userID, domain.Transaction{
			WalletID:      bill.WalletID,
			CategoryID:    bill.CategoryID,
			Amount:        bill.Amount,
			Type:          bill.Type,
			Date:          now,
			Note:          bill.Name,
			ReferenceType: &refType,
			ReferenceID:   &refID,
		})
		if err != nil {
			return err
		}

		advanced := *bill
		paidAt := now
		advanced.LastPaidAt = &paidAt
		advanced.NextRun = schedule.Advance(bill.Frequency, bill.NextRun, now)
		if advanced.EndsAt != nil && advanced.NextRun.After(*advanced.EndsAt) {
			advanced.IsActive = false
		}
		advanced.Touch(userID, now)

		if err := repos.RecurringBillRepo.AdvanceSchedule(ctx, advanced, bill.LastPaidAt); err != nil {
			return err
		}

		payment = &domain.BillPayment{Bill: advanced, Transaction: details.Transaction}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// PayDueBills pays every due bill with bounded concurrency. One failed bill does not stop
// the others; bills already paid or no longer active are counted as skipped.
func (s *recurringBillService) PayDueBills(ctx context.Context, now time.Time) (*domain.BillRunSummary, error) {
	ctx, span := tracer.Start(ctx, "RecurringBillService.PayDueBills")
	defer span.End()

	bills, err := s.repos.RecurringBillRepo.ListDueBills(ctx, now, dueBillBatch)
	if err != nil {
		s.LogError(ctx, err, "Failed to list due recurring bills")
		return nil, err
	}

	summary := &domain.BillRunSummary{Due: len(bills)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, bill := range bills {
		g.Go(func() error {
			_, err := s.pay(gctx, bill.UserID, bill.BillID, now)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				summary.Paid++
			case errors.Is(err, apperrors.ErrAlreadyPaidThisPeriod), errors.Is(err, apperrors.ErrBillInactive):
				summary.Skipped++
			default:
				summary.Failed++
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", bill.BillID, err))
				s.LogError(ctx, err, "Scheduled bill payment failed", slog.String("bill_id", bill.BillID))
			}
			return nil
		})
	}
	_ = g.Wait()

	if s.Metrics != nil {
		s.Metrics.AddBills("paid", summary.Paid)
		s.Metrics.AddBills("skipped", summary.Skipped)
		s.Metrics.AddBills("failed", summary.Failed)
	}
	span.SetAttributes(
		attribute.Int("bills.due", summary.Due),
		attribute.Int("bills.paid", summary.Paid),
		attribute.Int("bills.failed", summary.Failed),
	)
	s.LogInfo(ctx, "Due bill sweep finished",
		slog.Int("due", summary.Due),
		slog.Int("paid", summary.Paid),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return summary, nil
}
