package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// budgetStatusConcurrency bounds the sum queries ListBudgetStatuses runs at once.
const budgetStatusConcurrency = 4

// budgetService derives spending from transactions on every call.
type budgetService struct {
	BaseService
	budgets      portsrepo.BudgetReader
	transactions portsrepo.TransactionReader
}

// NewBudgetService creates a budget tracker.
func NewBudgetService(budgets portsrepo.BudgetReader, transactions portsrepo.TransactionReader, opts ...Option) portssvc.BudgetSvcFacade {
	svc := &budgetService{budgets: budgets, transactions: transactions}
	svc.apply(opts)
	return svc
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// ComputeSpent sums active expense transactions of the budget's category (and wallet, if
// set) dated within [StartDate, EndDate].
func (s *budgetService) ComputeSpent(ctx context.Context, budget domain.Budget) (decimal.Decimal, error) {
	return s.transactions.SumExpenses(ctx, budget.UserID, budget.CategoryID, budget.WalletID, budget.StartDate, budget.EndDate)
}

func (s *budgetService) GetBudgetStatus(ctx context.Context, userID, budgetID string) (*domain.BudgetStatus, error) {
	budget, err := s.budgets.FindBudgetByID(ctx, userID, budgetID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to find budget", slog.String("budget_id", budgetID))
		return nil, err
	}
	spent, err := s.ComputeSpent(ctx, *budget)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute budget spending", slog.String("budget_id", budgetID))
		return nil, err
	}
	status := domain.NewBudgetStatus(*budget, spent)
	return &status, nil
}

func (s *budgetService) ListBudgetStatuses(ctx context.Context, userID string) ([]domain.BudgetStatus, error) {
	budgets, err := s.budgets.ListBudgetsByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budgets", slog.String("user_id", userID))
		return nil, err
	}

	statuses := make([]domain.BudgetStatus, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(budgetStatusConcurrency)
	for i, budget := range budgets {
		g.Go(func() error {
			spent, err := s.ComputeSpent(gctx, budget)
			if err != nil {
				return err
			}
			statuses[i] = domain.NewBudgetStatus(budget, spent)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Failed to compute budget statuses", slog.String("user_id", userID))
		return nil, err
	}
	return statuses, nil
}
