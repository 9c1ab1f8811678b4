package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
)

// savingGoalService moves money between a wallet and a goal. The tagged transaction and
// the goal's progress are written in the same unit; progress is always re-derived from
// the tagged transactions, never incremented.
type savingGoalService struct {
	BaseService
	uow          portsrepo.UnitOfWork
	repos        portsrepo.RepositoryProvider
	transactions portssvc.TransactionUnitSvc
}

// NewSavingGoalService creates the saving goal engine on top of the transaction engine.
func NewSavingGoalService(repos portsrepo.RepositoryProvider, uow portsrepo.UnitOfWork, transactions portssvc.TransactionUnitSvc, opts ...Option) portssvc.SavingGoalSvcFacade {
	svc := &savingGoalService{uow: uow, repos: repos, transactions: transactions}
	svc.apply(opts)
	return svc
}

var _ portssvc.SavingGoalSvcFacade = (*savingGoalService)(nil)

func (s *savingGoalService) GetGoal(ctx context.Context, userID, goalID string) (*domain.SavingGoal, error) {
	goal, err := s.repos.SavingGoalRepo.FindGoalByID(ctx, userID, goalID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to find saving goal", slog.String("goal_id", goalID))
		return nil, err
	}
	return goal, nil
}

// Deposit moves money from the goal's wallet into the goal as an expense transaction.
func (s *savingGoalService) Deposit(ctx context.Context, userID, goalID string, req dto.GoalMovementRequest) (*domain.GoalMovement, error) {
	return s.move(ctx, userID, goalID, req, domain.Expense)
}

// Withdraw returns money from the goal to its wallet as an income transaction.
func (s *savingGoalService) Withdraw(ctx context.Context, userID, goalID string, req dto.GoalMovementRequest) (*domain.GoalMovement, error) {
	return s.move(ctx, userID, goalID, req, domain.Income)
}

func (s *savingGoalService) move(ctx context.Context, userID, goalID string, req dto.GoalMovementRequest, txType domain.TransactionType) (*domain.GoalMovement, error) {
	if err := domain.ValidateAmount(txType, req.Amount); err != nil {
		return nil, err
	}

	var movement domain.GoalMovement
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		goal, err := repos.SavingGoalRepo.FindGoalForUpdate(ctx, userID, goalID)
		if err != nil {
			return err
		}
		if txType == domain.Income && goal.CurrentAmount.LessThan(req.Amount) {
			return fmt.Errorf("%w: goal holds %s, requested %s", apperrors.ErrInsufficientGoalBalance, goal.CurrentAmount, req.Amount)
		}

		refType := domain.RefSavingGoal
		refID := goal.GoalID
		txn := domain.Transaction{
			WalletID:      goal.WalletID,
			Amount:        req.Amount,
			Type:          txType,
			Note:          req.Note,
			ReferenceType: &refType,
			ReferenceID:   &refID,
		}
		if req.Date != nil {
			txn.Date = *req.Date
		}
		if txn.Note == "" {
			txn.Note = goalNote(txType, goal.Name)
		}

		details, err := s.transactions.CreateInUnit(ctx, repos, userID, txn)
		if err != nil {
			return err
		}
		synced, err := repos.SavingGoalRepo.SyncProgress(ctx, goalID, userID, s.now())
		if err != nil {
			return fmt.Errorf("syncing saving goal progress: %w", err)
		}

		movement = domain.GoalMovement{Goal: *synced, Transaction: details.Transaction}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to move money for saving goal",
			slog.String("goal_id", goalID),
			slog.String("type", string(txType)))
		return nil, err
	}

	s.LogInfo(ctx, "Saving goal updated",
		slog.String("goal_id", goalID),
		slog.String("current_amount", movement.Goal.CurrentAmount.String()),
		slog.Bool("is_completed", movement.Goal.IsCompleted))
	return &movement, nil
}

func goalNote(txType domain.TransactionType, name string) string {
	if txType == domain.Income {
		return "Withdrawal from saving goal: " + name
	}
	return "Deposit to saving goal: " + name
}
