package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/SscSPs/finance_tracker/internal/platform/resilience"
	"github.com/SscSPs/finance_tracker/internal/scheduler"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBillService struct {
	mock.Mock
}

func (m *mockBillService) Pay(ctx context.Context, userID, billID string) (*domain.BillPayment, error) {
	args := m.Called(ctx, userID, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillPayment), args.Error(1)
}

func (m *mockBillService) PayDueBills(ctx context.Context, now time.Time) (*domain.BillRunSummary, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillRunSummary), args.Error(1)
}

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newScheduler(svc *mockBillService) *scheduler.BillScheduler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return scheduler.NewBillScheduler(svc, resilience.NewCircuitBreaker("bills-test"), time.Hour, func() time.Time { return fixedNow }, logger)
}

func TestSweep_PassesClock(t *testing.T) {
	svc := new(mockBillService)
	svc.On("PayDueBills", mock.Anything, fixedNow).Return(&domain.BillRunSummary{Due: 2, Paid: 2}, nil).Once()

	summary, err := newScheduler(svc).Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Paid)
	svc.AssertExpectations(t)
}

func TestSweep_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	svc := new(mockBillService)
	storeDown := errors.New("store unavailable")
	svc.On("PayDueBills", mock.Anything, fixedNow).Return(nil, storeDown).Times(3)

	s := newScheduler(svc)
	for i := 0; i < 3; i++ {
		_, err := s.Sweep(context.Background())
		require.ErrorIs(t, err, storeDown)
	}

	_, err := s.Sweep(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	svc.AssertNumberOfCalls(t, "PayDueBills", 3)
}

func TestRun_StopsOnCancel(t *testing.T) {
	svc := new(mockBillService)
	ctx, cancel := context.WithCancel(context.Background())
	svc.On("PayDueBills", mock.Anything, fixedNow).Run(func(mock.Arguments) { cancel() }).
		Return(&domain.BillRunSummary{}, nil).Once()

	done := make(chan struct{})
	go func() {
		newScheduler(svc).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	svc.AssertExpectations(t)
}
