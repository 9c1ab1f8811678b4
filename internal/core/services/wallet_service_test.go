package services_test

import (
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/google/uuid"
)

func (s *LedgerSuite) TestSetDefaultWalletIsExclusive() {
	a := s.seedWallet(10)
	b := s.seedWallet(20)

	_, err := s.svc.Wallet.SetDefaultWallet(s.ctx, s.userID, a)
	s.Require().NoError(err)
	wallet, err := s.svc.Wallet.SetDefaultWallet(s.ctx, s.userID, b)
	s.Require().NoError(err)
	s.True(wallet.IsDefault)

	summary, err := s.svc.Wallet.ListWallets(s.ctx, s.userID)
	s.Require().NoError(err)
	defaults := 0
	for _, w := range summary.Wallets {
		if w.IsDefault {
			defaults++
			s.Equal(b, w.WalletID)
		}
	}
	s.Equal(1, defaults)
	s.True(summary.TotalBalance.Equal(amount(30)))
}

func (s *LedgerSuite) TestArchivedWalletCannotBeDefault() {
	archived := domain.Wallet{
		WalletID:    uuid.NewString(),
		UserID:      s.userID,
		Name:        "old",
		Balance:     amount(500),
		IsArchived:  true,
		AuditFields: domain.NewAuditFields(s.userID, s.now),
	}
	s.Require().NoError(s.repos.WalletRepo.SaveWallet(s.ctx, archived))
	s.seedWallet(100)

	_, err := s.svc.Wallet.SetDefaultWallet(s.ctx, s.userID, archived.WalletID)
	s.assertKind(err, apperrors.KindConflict)

	summary, err := s.svc.Wallet.ListWallets(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Len(summary.Wallets, 2)
	s.True(summary.TotalBalance.Equal(amount(100)), "archived wallets are not counted")
}

func (s *LedgerSuite) TestRecalculateBalanceRepairsDrift() {
	w := s.seedWallet(1_000)
	_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, Amount: amount(200), Type: domain.Expense})
	s.Require().NoError(err)

	s.Require().NoError(s.repos.WalletRepo.OverwriteBalance(s.ctx, w, amount(5), s.userID, s.now))

	repaired, err := s.svc.Wallet.RecalculateBalance(s.ctx, s.userID, w)
	s.Require().NoError(err)
	s.True(repaired.Balance.Equal(amount(800)))
	s.assertConserved(w)

	_, err = s.svc.Wallet.RecalculateBalance(s.ctx, s.userID, uuid.NewString())
	s.ErrorIs(err, apperrors.ErrWalletNotFound)
}

func (s *LedgerSuite) TestBudgetStatusIsDerived() {
	w := s.seedWallet(10_000)
	other := s.seedWallet(10_000)
	food := s.seedCategory(s.userID, domain.CategoryExpense)
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	budget := domain.Budget{
		BudgetID:    uuid.NewString(),
		UserID:      s.userID,
		Name:        "Food",
		CategoryID:  food,
		LimitAmount: amount(500),
		StartDate:   start,
		EndDate:     start.AddDate(0, 1, 0).Add(-time.Nanosecond),
		AuditFields: domain.NewAuditFields(s.userID, s.now),
	}
	s.Require().NoError(s.repos.BudgetRepo.SaveBudget(s.ctx, budget))

	spend := func(walletID string, v int64, date time.Time) string {
		created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
			WalletID: walletID, CategoryID: &food, Amount: amount(v), Type: domain.Expense, Date: &date,
		})
		s.Require().NoError(err)
		return created.TransactionID
	}
	spend(w, 300, start.AddDate(0, 0, 2))
	spend(other, 150, start.AddDate(0, 0, 3))
	spend(w, 999, start.AddDate(0, -1, 0)) // before the window
	deleted := spend(w, 400, start.AddDate(0, 0, 4))
	s.Require().NoError(s.svc.Transaction.DeleteTransaction(s.ctx, s.userID, deleted))

	status, err := s.svc.Budget.GetBudgetStatus(s.ctx, s.userID, budget.BudgetID)
	s.Require().NoError(err)
	s.True(status.Spent.Equal(amount(450)), "spent: %s", status.Spent)
	s.True(status.Remaining.Equal(amount(50)))
	s.False(status.IsExceeded)

	spend(w, 100, start.AddDate(0, 0, 5))
	statuses, err := s.svc.Budget.ListBudgetStatuses(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(statuses, 1)
	s.True(statuses[0].IsExceeded)

	scoped := budget
	scoped.WalletID = &w
	spent, err := s.svc.Budget.ComputeSpent(s.ctx, scoped)
	s.Require().NoError(err)
	s.True(spent.Equal(amount(400)))
}

func (s *LedgerSuite) TestCategoryTreeStaysAcyclic() {
	root, err := s.svc.Category.CreateCategory(s.ctx, s.userID, dto.CreateCategoryRequest{Name: "Living", Type: domain.CategoryExpense})
	s.Require().NoError(err)
	child, err := s.svc.Category.CreateCategory(s.ctx, s.userID, dto.CreateCategoryRequest{Name: "Rent", Type: domain.CategoryExpense, ParentID: &root.CategoryID})
	s.Require().NoError(err)
	grandchild, err := s.svc.Category.CreateCategory(s.ctx, s.userID, dto.CreateCategoryRequest{Name: "Deposit", Type: domain.CategoryExpense, ParentID: &child.CategoryID})
	s.Require().NoError(err)

	_, err = s.svc.Category.UpdateCategoryParent(s.ctx, s.userID, root.CategoryID, dto.UpdateCategoryParentRequest{ParentID: &grandchild.CategoryID})
	s.ErrorIs(err, apperrors.ErrCategoryCycle)

	_, err = s.svc.Category.UpdateCategoryParent(s.ctx, s.userID, root.CategoryID, dto.UpdateCategoryParentRequest{ParentID: &root.CategoryID})
	s.ErrorIs(err, apperrors.ErrCategoryCycle)

	salary, err := s.svc.Category.CreateCategory(s.ctx, s.userID, dto.CreateCategoryRequest{Name: "Salary", Type: domain.CategoryIncome})
	s.Require().NoError(err)
	_, err = s.svc.Category.UpdateCategoryParent(s.ctx, s.userID, salary.CategoryID, dto.UpdateCategoryParentRequest{ParentID: &root.CategoryID})
	s.ErrorIs(err, apperrors.ErrTypeMismatch)

	moved, err := s.svc.Category.UpdateCategoryParent(s.ctx, s.userID, grandchild.CategoryID, dto.UpdateCategoryParentRequest{ParentID: nil})
	s.Require().NoError(err)
	s.Nil(moved.ParentID)

	_, err = s.svc.Category.CreateCategory(s.ctx, s.userID, dto.CreateCategoryRequest{Name: "x", Type: domain.CategoryExpense, ParentID: ptr(uuid.NewString())})
	s.assertKind(err, apperrors.KindValidation)
}
