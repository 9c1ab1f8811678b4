package services

import (
	"context"
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/shopspring/decimal"
)

// BudgetSvcFacade derives budget spending from transactions. It never writes.
type BudgetSvcFacade interface {
	ComputeSpent(ctx context.Context, budget domain.Budget) (decimal.Decimal, error)
	GetBudgetStatus(ctx context.Context, userID, budgetID string) (*domain.BudgetStatus, error)
	ListBudgetStatuses(ctx context.Context, userID string) ([]domain.BudgetStatus, error)
}

// SavingGoalSvcFacade moves money into and out of saving goals.
type SavingGoalSvcFacade interface {
	Deposit(ctx context.Context, userID, goalID string, req dto.GoalMovementRequest) (*domain.GoalMovement, error)
	Withdraw(ctx context.Context, userID, goalID string, req dto.GoalMovementRequest) (*domain.GoalMovement, error)
	GetGoal(ctx context.Context, userID, goalID string) (*domain.SavingGoal, error)
}

// RecurringBillSvcFacade pays recurring bills.
type RecurringBillSvcFacade interface {
	Pay(ctx context.Context, userID, billID string) (*domain.BillPayment, error)

	// PayDueBills pays every active bill whose next run is at or before now.
	PayDueBills(ctx context.Context, now time.Time) (*domain.BillRunSummary, error)
}

// WalletSvcFacade defines wallet reads and the wallet maintenance operations.
type WalletSvcFacade interface {
	GetWallet(ctx context.Context, userID, walletID string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, userID string) (*domain.WalletSummary, error)
	SetDefaultWallet(ctx context.Context, userID, walletID string) (*domain.Wallet, error)

	// RecalculateBalance rebuilds the stored balance from the transaction log.
	RecalculateBalance(ctx context.Context, userID, walletID string) (*domain.Wallet, error)
}

// CategorySvcFacade defines category writes that keep the parent tree acyclic.
type CategorySvcFacade interface {
	CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error)
	UpdateCategoryParent(ctx context.Context, userID, categoryID string, req dto.UpdateCategoryParentRequest) (*domain.Category, error)
}
