package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
)

// SavingGoalReader defines read operations for saving goals.
type SavingGoalReader interface {
	FindGoalByID(ctx context.Context, userID, goalID string) (*domain.SavingGoal, error)
	FindGoalForUpdate(ctx context.Context, userID, goalID string) (*domain.SavingGoal, error)
}

// SavingGoalWriter defines write operations for saving goals.
type SavingGoalWriter interface {
	SaveGoal(ctx context.Context, goal domain.SavingGoal) error

	// SyncProgress recomputes current_amount from the goal's tagged active transactions
	// (expense adds, income subtracts) and updates the completion flags, in one statement.
	// A result below zero fails with ErrInsufficientGoalBalance and leaves the goal unchanged.
	SyncProgress(ctx context.Context, goalID, userID string, now time.Time) (*domain.SavingGoal, error)
}

// SavingGoalRepositoryFacade combines all saving goal repository interfaces.
type SavingGoalRepositoryFacade interface {
	SavingGoalReader
	SavingGoalWriter
}
