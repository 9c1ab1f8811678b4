package services_test

import (
	"sync"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/google/uuid"
)

func (s *LedgerSuite) seedBill(walletID string, freq domain.Frequency, nextRun time.Time, mutate ...func(*domain.RecurringBill)) string {
	b := domain.RecurringBill{
		BillID:      uuid.NewString(),
		UserID:      s.userID,
		WalletID:    walletID,
		Name:        "Rent",
		Amount:      amount(5_000),
		Type:        domain.Expense,
		Frequency:   freq,
		NextRun:     nextRun,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(s.userID, s.now),
	}
	for _, m := range mutate {
		m(&b)
	}
	s.Require().NoError(s.repos.RecurringBillRepo.SaveBill(s.ctx, b))
	return b.BillID
}

func (s *LedgerSuite) bill(billID string) *domain.RecurringBill {
	b, err := s.repos.RecurringBillRepo.FindBillByID(s.ctx, s.userID, billID)
	s.Require().NoError(err)
	return b
}

func (s *LedgerSuite) TestPayBillOncePerPeriod() {
	w := s.seedWallet(20_000)
	billID := s.seedBill(w, domain.Monthly, s.now)

	payment, err := s.svc.RecurringBill.Pay(s.ctx, s.userID, billID)
	s.Require().NoError(err)
	s.Equal(domain.Expense, payment.Transaction.Type)
	s.Equal("Rent", payment.Transaction.Note)
	s.Require().NotNil(payment.Transaction.ReferenceType)
	s.Equal(domain.RefRecurringBill, *payment.Transaction.ReferenceType)
	s.assertBalance(w, 15_000)

	stored := s.bill(billID)
	s.Require().NotNil(stored.LastPaidAt)
	s.Equal(s.now, *stored.LastPaidAt)
	s.Equal(s.now.AddDate(0, 1, 0), stored.NextRun)

	_, err = s.svc.RecurringBill.Pay(s.ctx, s.userID, billID)
	s.ErrorIs(err, apperrors.ErrAlreadyPaidThisPeriod)
	s.assertKind(err, apperrors.KindConflict)
	s.assertBalance(w, 15_000)
	s.Equal(1, s.activeTransactionCount())

	s.now = s.now.AddDate(0, 1, 0)
	_, err = s.svc.RecurringBill.Pay(s.ctx, s.userID, billID)
	s.Require().NoError(err)
	s.assertBalance(w, 10_000)
}

func (s *LedgerSuite) TestConcurrentPayCommitsOnce() {
	w := s.seedWallet(20_000)
	billID := s.seedBill(w, domain.Monthly, s.now)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.RecurringBill.Pay(s.ctx, s.userID, billID)
		}(i)
	}
	wg.Wait()

	paid := 0
	for _, err := range errs {
		if err == nil {
			paid++
			continue
		}
		s.ErrorIs(err, apperrors.ErrAlreadyPaidThisPeriod)
	}
	s.Equal(1, paid)
	s.assertBalance(w, 15_000)
}

func (s *LedgerSuite) TestPayInactiveOrExpiredBill() {
	w := s.seedWallet(20_000)
	inactive := s.seedBill(w, domain.Monthly, s.now, func(b *domain.RecurringBill) { b.IsActive = false })
	expired := s.seedBill(w, domain.Monthly, s.now, func(b *domain.RecurringBill) {
		ended := s.now.AddDate(0, 0, -1)
		b.EndsAt = &ended
	})

	_, err := s.svc.RecurringBill.Pay(s.ctx, s.userID, inactive)
	s.ErrorIs(err, apperrors.ErrBillInactive)
	_, err = s.svc.RecurringBill.Pay(s.ctx, s.userID, expired)
	s.ErrorIs(err, apperrors.ErrBillInactive)
	s.assertBalance(w, 20_000)
}

func (s *LedgerSuite) TestFinalPaymentDeactivatesBill() {
	w := s.seedWallet(20_000)
	billID := s.seedBill(w, domain.Weekly, s.now, func(b *domain.RecurringBill) {
		ends := s.now.AddDate(0, 0, 3)
		b.EndsAt = &ends
	})

	payment, err := s.svc.RecurringBill.Pay(s.ctx, s.userID, billID)
	s.Require().NoError(err)
	s.False(payment.Bill.IsActive)
	s.False(s.bill(billID).IsActive)
}

func (s *LedgerSuite) TestLatePaymentSkipsMissedPeriods() {
	w := s.seedWallet(20_000)
	billID := s.seedBill(w, domain.Weekly, s.now.AddDate(0, 0, -15))

	payment, err := s.svc.RecurringBill.Pay(s.ctx, s.userID, billID)
	s.Require().NoError(err)
	s.True(payment.Bill.NextRun.After(s.now))
	s.Equal(s.now.AddDate(0, 0, 6), payment.Bill.NextRun)
}

func (s *LedgerSuite) TestPayDueBills() {
	w := s.seedWallet(100_000)
	s.seedBill(w, domain.Monthly, s.now.Add(-time.Hour))
	s.seedBill(w, domain.Daily, s.now.AddDate(0, 0, -2))
	s.seedBill(w, domain.Monthly, s.now.AddDate(0, 0, 5))
	paidAlready := s.now.Add(-2 * time.Hour)
	s.seedBill(w, domain.Monthly, s.now.Add(-time.Minute), func(b *domain.RecurringBill) { b.LastPaidAt = &paidAlready })

	summary, err := s.svc.RecurringBill.PayDueBills(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(3, summary.Due)
	s.Equal(2, summary.Paid)
	s.Equal(1, summary.Skipped)
	s.Equal(0, summary.Failed)
	s.assertBalance(w, 90_000)
	s.assertConserved(w)

	summary, err = s.svc.RecurringBill.PayDueBills(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(1, summary.Due, "only the bill paid earlier this period is still due")
	s.Equal(0, summary.Paid)
}
