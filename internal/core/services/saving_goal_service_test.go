package services_test

import (
	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/repositories/memory"
	"github.com/google/uuid"
)

func (s *LedgerSuite) seedGoal(walletID string, target, initial int64) string {
	g := domain.SavingGoal{
		GoalID:        uuid.NewString(),
		UserID:        s.userID,
		WalletID:      walletID,
		Name:          "Holiday",
		TargetAmount:  amount(target),
		InitialAmount: amount(initial),
		CurrentAmount: amount(initial),
		IsActive:      true,
		AuditFields:   domain.NewAuditFields(s.userID, s.now),
	}
	s.Require().NoError(s.repos.SavingGoalRepo.SaveGoal(s.ctx, g))
	return g.GoalID
}

func (s *LedgerSuite) TestGoalCompletionToggles() {
	w := s.seedWallet(2_000_000)
	goalID := s.seedGoal(w, 1_000_000, 800_000)

	moved, err := s.svc.SavingGoal.Deposit(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(200_000)})
	s.Require().NoError(err)
	s.True(moved.Goal.CurrentAmount.Equal(amount(1_000_000)))
	s.True(moved.Goal.IsCompleted)
	s.False(moved.Goal.IsActive)
	s.Equal(domain.Expense, moved.Transaction.Type)
	s.Require().NotNil(moved.Transaction.ReferenceID)
	s.Equal(goalID, *moved.Transaction.ReferenceID)
	s.Equal("Deposit to saving goal: Holiday", moved.Transaction.Note)
	s.assertBalance(w, 1_800_000)

	moved, err = s.svc.SavingGoal.Withdraw(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(300_000), Note: "flights"})
	s.Require().NoError(err)
	s.True(moved.Goal.CurrentAmount.Equal(amount(700_000)))
	s.False(moved.Goal.IsCompleted)
	s.True(moved.Goal.IsActive)
	s.Equal("flights", moved.Transaction.Note)
	s.assertBalance(w, 2_100_000)
}

func (s *LedgerSuite) TestGoalWithdrawBeyondBalance() {
	w := s.seedWallet(100)
	goalID := s.seedGoal(w, 1_000, 500)

	_, err := s.svc.SavingGoal.Withdraw(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(501)})
	s.ErrorIs(err, apperrors.ErrInsufficientGoalBalance)
	s.assertKind(err, apperrors.KindConflict)
	s.assertBalance(w, 100)

	_, err = s.svc.SavingGoal.Deposit(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(0)})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = s.svc.SavingGoal.Deposit(s.ctx, s.userID, uuid.NewString(), dto.GoalMovementRequest{Amount: amount(10)})
	s.assertKind(err, apperrors.KindNotFound)
	s.Equal(0, s.activeTransactionCount())
}

func (s *LedgerSuite) TestGoalProgressFollowsTaggedTransactions() {
	w := s.seedWallet(1_000)
	goalID := s.seedGoal(w, 1_000, 0)

	moved, err := s.svc.SavingGoal.Deposit(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(400)})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Transaction.DeleteTransaction(s.ctx, s.userID, moved.Transaction.TransactionID))
	goal, err := s.svc.SavingGoal.GetGoal(s.ctx, s.userID, goalID)
	s.Require().NoError(err)
	s.True(goal.CurrentAmount.IsZero(), "deleting the deposit removes it from the goal")
	s.assertBalance(w, 1_000)

	_, err = s.svc.Transaction.RestoreTransaction(s.ctx, s.userID, moved.Transaction.TransactionID)
	s.Require().NoError(err)
	goal, err = s.svc.SavingGoal.GetGoal(s.ctx, s.userID, goalID)
	s.Require().NoError(err)
	s.True(goal.CurrentAmount.Equal(amount(400)))
}

func (s *LedgerSuite) TestGoalSyncFailureIsCompensated() {
	w := s.seedWallet(1_000)
	goalID := s.seedGoal(w, 1_000, 0)
	s.store.InjectFault(memory.OpSavingGoalSyncProgress, 0, errBoom)

	_, err := s.svc.SavingGoal.Deposit(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(400)})
	s.assertKind(err, apperrors.KindConsistency)
	s.ErrorIs(err, errBoom)

	s.assertBalance(w, 1_000)
	s.Equal(0, s.activeTransactionCount())
	goal, err := s.svc.SavingGoal.GetGoal(s.ctx, s.userID, goalID)
	s.Require().NoError(err)
	s.True(goal.CurrentAmount.IsZero())
}

func (s *LedgerSuite) TestFailedCompensationIsConsistencyFailure() {
	w := s.seedWallet(1_000)
	goalID := s.seedGoal(w, 1_000, 0)
	s.store.InjectFault(memory.OpSavingGoalSyncProgress, 0, errBoom)
	// the first balance write succeeds, its undo does not
	s.store.InjectFault(memory.OpWalletApplyDeltas, 1, errBoom)

	_, err := s.svc.SavingGoal.Deposit(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(400)})
	s.ErrorIs(err, apperrors.ErrConsistency)
	s.assertKind(err, apperrors.KindConsistency)

	// the partial effect is left for RecalculateBalance to repair
	s.assertBalance(w, 600)
	repaired, err := s.svc.Wallet.RecalculateBalance(s.ctx, s.userID, w)
	s.Require().NoError(err)
	s.True(repaired.Balance.Equal(amount(1_000)))
}

func (s *LedgerSuite) TestGoalCannotGoNegativeThroughDeposits() {
	w := s.seedWallet(1_000)
	goalID := s.seedGoal(w, 500, 0)

	deposit, err := s.svc.SavingGoal.Deposit(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(100)})
	s.Require().NoError(err)
	_, err = s.svc.SavingGoal.Withdraw(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(100)})
	s.Require().NoError(err)
	s.assertBalance(w, 1_000)

	// the withdrawal already spent the deposit
	err = s.svc.Transaction.DeleteTransaction(s.ctx, s.userID, deposit.Transaction.TransactionID)
	s.ErrorIs(err, apperrors.ErrInsufficientGoalBalance)
	s.assertKind(err, apperrors.KindConflict)

	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, deposit.Transaction.TransactionID, dto.UpdateTransactionRequest{Amount: ptr(amount(50))})
	s.ErrorIs(err, apperrors.ErrInsufficientGoalBalance)

	s.assertBalance(w, 1_000)
	s.Equal(2, s.activeTransactionCount())
	goal, err := s.svc.SavingGoal.GetGoal(s.ctx, s.userID, goalID)
	s.Require().NoError(err)
	s.True(goal.CurrentAmount.IsZero(), "goal stays at %s", goal.CurrentAmount)

	updated, err := s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, deposit.Transaction.TransactionID, dto.UpdateTransactionRequest{Amount: ptr(amount(150))})
	s.Require().NoError(err)
	s.True(updated.Amount.Equal(amount(150)))
	goal, err = s.svc.SavingGoal.GetGoal(s.ctx, s.userID, goalID)
	s.Require().NoError(err)
	s.True(goal.CurrentAmount.Equal(amount(50)))
	s.assertBalance(w, 950)
}

func (s *LedgerSuite) TestGoalTransactionKeepsTypeAndWallet() {
	w := s.seedWallet(1_000)
	other := s.seedWallet(0)
	goalID := s.seedGoal(w, 500, 0)

	deposit, err := s.svc.SavingGoal.Deposit(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(100)})
	s.Require().NoError(err)

	income := domain.Income
	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, deposit.Transaction.TransactionID, dto.UpdateTransactionRequest{Type: &income})
	s.assertKind(err, apperrors.KindConflict)

	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, deposit.Transaction.TransactionID, dto.UpdateTransactionRequest{WalletID: &other})
	s.assertKind(err, apperrors.KindConflict)

	s.assertBalance(w, 900)
	s.assertBalance(other, 0)
	goal, err := s.svc.SavingGoal.GetGoal(s.ctx, s.userID, goalID)
	s.Require().NoError(err)
	s.True(goal.CurrentAmount.Equal(amount(100)))
}

func (s *LedgerSuite) TestGoalMovementRejectsSubScaleAmount() {
	w := s.seedWallet(1_000)
	goalID := s.seedGoal(w, 500, 0)

	_, err := s.svc.SavingGoal.Deposit(s.ctx, s.userID, goalID, dto.GoalMovementRequest{Amount: amount(12_345).Shift(-5)})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	s.assertBalance(w, 1_000)
	s.Equal(0, s.activeTransactionCount())
}
