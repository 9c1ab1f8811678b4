package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

const savingGoalColumns = `goal_id, user_id, wallet_id, name, target_amount, initial_amount, current_amount,
	is_completed, is_active, deadline, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type savingGoalRepository struct {
	BaseRepository
}

var _ portsrepo.SavingGoalRepositoryFacade = (*savingGoalRepository)(nil)

func scanSavingGoal(row pgx.Row) (*domain.SavingGoal, error) {
	var g domain.SavingGoal
	err := row.Scan(
		&g.GoalID, &g.UserID, &g.WalletID, &g.Name, &g.TargetAmount, &g.InitialAmount, &g.CurrentAmount,
		&g.IsCompleted, &g.IsActive, &g.Deadline, &g.DeletedAt, &g.CreatedAt, &g.CreatedBy, &g.LastUpdatedAt, &g.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

var errGoalNotFound = apperrors.NewNotFoundError("saving goal not found")

func (r *savingGoalRepository) FindGoalByID(ctx context.Context, userID, goalID string) (*domain.SavingGoal, error) {
	return r.find(ctx, userID, goalID, "")
}

func (r *savingGoalRepository) FindGoalForUpdate(ctx context.Context, userID, goalID string) (*domain.SavingGoal, error) {
	return r.find(ctx, userID, goalID, " FOR UPDATE")
}

func (r *savingGoalRepository) find(ctx context.Context, userID, goalID, lock string) (*domain.SavingGoal, error) {
	query := `SELECT ` + savingGoalColumns + ` FROM saving_goals WHERE goal_id = $1 AND user_id = $2 AND deleted_at IS NULL` + lock
	g, err := scanSavingGoal(r.DB.QueryRow(ctx, query, goalID, userID))
	if err != nil {
		return nil, mapReadError(err, errGoalNotFound, "saving goal")
	}
	return g, nil
}

func (r *savingGoalRepository) SaveGoal(ctx context.Context, g domain.SavingGoal) error {
	query := `
		INSERT INTO saving_goals (` + savingGoalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.DB.Exec(ctx, query,
		g.GoalID, g.UserID, g.WalletID, g.Name, g.TargetAmount, g.InitialAmount, g.CurrentAmount,
		g.IsCompleted, g.IsActive, g.Deadline, g.DeletedAt, g.CreatedAt, g.CreatedBy, g.LastUpdatedAt, g.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "saving goal "+g.GoalID)
	}
	return nil
}

// SyncProgress derives current_amount from the tagged transactions visible to the
// current unit, so the goal can never drift from its deposits and withdrawals. A result
// below zero is refused with ErrInsufficientGoalBalance and nothing is written.
func (r *savingGoalRepository) SyncProgress(ctx context.Context, goalID, userID string, now time.Time) (*domain.SavingGoal, error) {
	query := `
		WITH tagged AS (
		    SELECT COALESCE(SUM(CASE type WHEN 'expense' THEN amount WHEN 'income' THEN -amount ELSE 0 END), 0) AS net
		    FROM transactions
		    WHERE reference_type = 'saving_goal' AND reference_id = $1 AND deleted_at IS NULL
		)
		UPDATE saving_goals g
		SET current_amount = g.initial_amount + tagged.net,
		    is_completed = g.initial_amount + tagged.net >= g.target_amount,
		    is_active = g.initial_amount + tagged.net < g.target_amount,
		    last_updated_at = $3, last_updated_by = $2
		FROM tagged
		WHERE g.goal_id = $1 AND g.deleted_at IS NULL AND g.initial_amount + tagged.net >= 0
		RETURNING g.goal_id, g.user_id, g.wallet_id, g.name, g.target_amount, g.initial_amount, g.current_amount,
		    g.is_completed, g.is_active, g.deadline, g.deleted_at, g.created_at, g.created_by, g.last_updated_at, g.last_updated_by`
	g, err := scanSavingGoal(r.DB.QueryRow(ctx, query, goalID, userID, now))
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapReadError(err, errGoalNotFound, "saving goal")
	}

	// no row: either the goal is gone or its tagged withdrawals exceed what was put in
	var exists bool
	if err := r.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM saving_goals WHERE goal_id = $1 AND deleted_at IS NULL)`, goalID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking saving goal %s: %w", goalID, err)
	}
	if !exists {
		return nil, errGoalNotFound
	}
	return nil, fmt.Errorf("%w: goal %s would go below zero", apperrors.ErrInsufficientGoalBalance, goalID)
}
