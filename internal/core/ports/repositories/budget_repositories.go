package repositories

import (
	"context"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
)

// BudgetReader defines read operations for budgets. Budgets are never written by the ledger.
type BudgetReader interface {
	FindBudgetByID(ctx context.Context, userID, budgetID string) (*domain.Budget, error)
	ListBudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error)
}

// BudgetWriter defines write operations for budgets.
type BudgetWriter interface {
	SaveBudget(ctx context.Context, budget domain.Budget) error
}

// BudgetRepositoryFacade combines all budget repository interfaces.
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
