package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type savingGoalRepository struct {
	s    *Store
	undo *undoLog
}

var _ portsrepo.SavingGoalRepositoryFacade = (*savingGoalRepository)(nil)

func (r *savingGoalRepository) FindGoalByID(ctx context.Context, userID, goalID string) (*domain.SavingGoal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.goals[goalID]
	if !ok || g.UserID != userID || g.IsDeleted() {
		return nil, apperrors.NewNotFoundError("saving goal not found")
	}
	return &g, nil
}

func (r *savingGoalRepository) FindGoalForUpdate(ctx context.Context, userID, goalID string) (*domain.SavingGoal, error) {
	return r.FindGoalByID(ctx, userID, goalID)
}

func (r *savingGoalRepository) SaveGoal(ctx context.Context, goal domain.SavingGoal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.goals[goal.GoalID]; exists {
		return fmt.Errorf("%w: saving goal %s", apperrors.ErrDuplicate, goal.GoalID)
	}
	r.s.goals[goal.GoalID] = goal
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.goals, goal.GoalID)
		return nil
	})
	return nil
}

func (r *savingGoalRepository) SyncProgress(ctx context.Context, goalID, userID string, now time.Time) (*domain.SavingGoal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpSavingGoalSyncProgress); err != nil {
		return nil, err
	}
	g, ok := r.s.goals[goalID]
	if !ok || g.IsDeleted() {
		return nil, apperrors.NewNotFoundError("saving goal not found")
	}
	prev := g

	net := decimal.Zero
	tagged := r.s.activeTransactions(func(t domain.Transaction) bool {
		return t.ReferenceType != nil && *t.ReferenceType == domain.RefSavingGoal && t.ReferenceID != nil && *t.ReferenceID == goalID
	})
	for _, t := range tagged {
		switch t.Type {
		case domain.Expense:
			net = net.Add(t.Amount)
		case domain.Income:
			net = net.Sub(t.Amount)
		}
	}
	current := g.InitialAmount.Add(net)
	if current.IsNegative() {
		return nil, fmt.Errorf("%w: goal %s would go below zero", apperrors.ErrInsufficientGoalBalance, goalID)
	}
	g.SetProgress(current)
	g.Touch(userID, now)
	r.s.goals[goalID] = g

	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.goals[goalID] = prev
		return nil
	})
	return &g, nil
}
