// Package scheduler runs the periodic due-bill sweep.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/sony/gobreaker"
)

// BillScheduler pays due recurring bills on a fixed interval. Sweeps run behind a
// circuit breaker so a failing store is not hammered every tick.
type BillScheduler struct {
	bills    portssvc.RecurringBillSvcFacade
	cb       *gobreaker.CircuitBreaker
	interval time.Duration
	clock    func() time.Time
	logger   *slog.Logger
}

// NewBillScheduler creates a scheduler. clock may be nil, which uses time.Now.
func NewBillScheduler(bills portssvc.RecurringBillSvcFacade, cb *gobreaker.CircuitBreaker, interval time.Duration, clock func() time.Time, logger *slog.Logger) *BillScheduler {
	if clock == nil {
		clock = time.Now
	}
	return &BillScheduler{
		bills:    bills,
		cb:       cb,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Run sweeps once immediately and then every interval until ctx is cancelled.
func (s *BillScheduler) Run(ctx context.Context) {
	s.logger.Info("Bill scheduler started", slog.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("Bill sweep failed", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Bill scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sweep runs a single due-bill pass through the breaker. While the breaker is open
// it returns gobreaker.ErrOpenState without touching the store.
func (s *BillScheduler) Sweep(ctx context.Context) (*domain.BillRunSummary, error) {
	result, err := s.cb.Execute(func() (any, error) {
		return s.bills.PayDueBills(ctx, s.clock())
	})
	if err != nil {
		return nil, err
	}

	summary := result.(*domain.BillRunSummary)
	if summary.Due > 0 {
		s.logger.Info("Bill sweep finished",
			slog.Int("due", summary.Due),
			slog.Int("paid", summary.Paid),
			slog.Int("skipped", summary.Skipped),
			slog.Int("failed", summary.Failed),
		)
	}
	return summary, nil
}
