package services_test

import (
	"math/rand"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/repositories/memory"
)

func dtoListAll() dto.ListTransactionsParams {
	return dto.ListTransactionsParams{Limit: 100}
}

func (s *LedgerSuite) TestExpenseCreateDeleteRestore() {
	w := s.seedWallet(100_000)

	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
		WalletID: w,
		Amount:   amount(30_000),
		Type:     domain.Expense,
	})
	s.Require().NoError(err)
	s.assertBalance(w, 70_000)
	s.Require().NotNil(created.Wallet)
	s.True(created.Wallet.Balance.Equal(amount(70_000)), "details carry the updated balance")
	s.Equal(s.now, created.Date)

	s.Require().NoError(s.svc.Transaction.DeleteTransaction(s.ctx, s.userID, created.TransactionID))
	s.assertBalance(w, 100_000)
	s.Equal(0, s.activeTransactionCount())

	err = s.svc.Transaction.DeleteTransaction(s.ctx, s.userID, created.TransactionID)
	s.assertKind(err, apperrors.KindNotFound)
	s.assertBalance(w, 100_000)

	restored, err := s.svc.Transaction.RestoreTransaction(s.ctx, s.userID, created.TransactionID)
	s.Require().NoError(err)
	s.False(restored.IsDeleted())
	s.assertBalance(w, 70_000)

	_, err = s.svc.Transaction.RestoreTransaction(s.ctx, s.userID, created.TransactionID)
	s.assertKind(err, apperrors.KindConflict)
	s.assertBalance(w, 70_000)
}

func (s *LedgerSuite) TestTransferCreateAndUpdate() {
	a := s.seedWallet(500_000)
	b := s.seedWallet(0)

	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
		WalletID:   a,
		ToWalletID: &b,
		Amount:     amount(200_000),
		Type:       domain.Transfer,
	})
	s.Require().NoError(err)
	s.assertBalance(a, 300_000)
	s.assertBalance(b, 200_000)
	s.Require().NotNil(created.ToWallet)

	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, created.TransactionID, dto.UpdateTransactionRequest{
		Amount: ptr(amount(100_000)),
	})
	s.Require().NoError(err)
	s.assertBalance(a, 400_000)
	s.assertBalance(b, 100_000)
}

func (s *LedgerSuite) TestTransferToSameWalletRejected() {
	a := s.seedWallet(1_000)

	_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
		WalletID:   a,
		ToWalletID: &a,
		Amount:     amount(10),
		Type:       domain.Transfer,
	})
	s.ErrorIs(err, apperrors.ErrInvalidTransfer)
	s.assertKind(err, apperrors.KindValidation)
	s.assertBalance(a, 1_000)
}

func (s *LedgerSuite) TestCreateValidation() {
	w := s.seedWallet(1_000)
	other := s.seedWalletFor("someone-else", 1_000)

	_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, Amount: amount(0), Type: domain.Expense})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, Amount: amount(-5), Type: domain.Income})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	// 0.00004 is finer than the stored scale
	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, Amount: amount(4).Shift(-5), Type: domain.Expense})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, Amount: amount(5), Type: "gift"})
	s.assertKind(err, apperrors.KindValidation)

	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: other, Amount: amount(5), Type: domain.Income})
	s.ErrorIs(err, apperrors.ErrWalletNotFound)

	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, ToWalletID: &other, Amount: amount(5), Type: domain.Transfer})
	s.ErrorIs(err, apperrors.ErrWalletNotFound)

	s.assertBalance(w, 1_000)
	s.Equal(0, s.activeTransactionCount())
}

func (s *LedgerSuite) TestAdjustCarriesItsOwnSign() {
	w := s.seedWallet(1_000)

	_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, Amount: amount(-250), Type: domain.Adjust})
	s.Require().NoError(err)
	s.assertBalance(w, 750)

	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, Amount: amount(0), Type: domain.Adjust})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (s *LedgerSuite) TestDebtAndLoan() {
	w := s.seedWallet(1_000)

	_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, Amount: amount(300), Type: domain.Debt})
	s.Require().NoError(err)
	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: w, Amount: amount(50), Type: domain.Loan})
	s.Require().NoError(err)
	s.assertBalance(w, 750)
}

func (s *LedgerSuite) TestCategoryDirectionEnforced() {
	w := s.seedWallet(1_000)
	expenseCat := s.seedCategory(s.userID, domain.CategoryExpense)

	_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
		WalletID:   w,
		CategoryID: &expenseCat,
		Amount:     amount(100),
		Type:       domain.Income,
	})
	s.ErrorIs(err, apperrors.ErrTypeMismatch)
	s.assertKind(err, apperrors.KindTypeMismatch)
	s.assertBalance(w, 1_000)
	s.Equal(0, s.activeTransactionCount())

	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
		WalletID:   w,
		CategoryID: &expenseCat,
		Amount:     amount(100),
		Type:       domain.Expense,
	})
	s.Require().NoError(err)
	s.Require().NotNil(created.Category)
	s.Equal(expenseCat, created.Category.CategoryID)

	foreign := s.seedCategory("someone-else", domain.CategoryExpense)
	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
		WalletID:   w,
		CategoryID: &foreign,
		Amount:     amount(100),
		Type:       domain.Expense,
	})
	s.ErrorIs(err, apperrors.ErrCategoryNotFound)
}

func (s *LedgerSuite) TestTransferRejectsCategory() {
	a := s.seedWallet(1_000)
	b := s.seedWallet(0)
	cat := s.seedCategory(s.userID, domain.CategoryExpense)

	_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
		WalletID: a, ToWalletID: &b, CategoryID: &cat, Amount: amount(10), Type: domain.Transfer,
	})
	s.assertKind(err, apperrors.KindValidation)
	s.assertBalance(a, 1_000)
	s.assertBalance(b, 0)
}

func (s *LedgerSuite) TestUpdateFailureLeavesStateUntouched() {
	a := s.seedWallet(1_000)
	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: a, Amount: amount(100), Type: domain.Expense})
	s.Require().NoError(err)

	// switching to a transfer without a destination fails before anything is written
	transfer := domain.Transfer
	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, created.TransactionID, dto.UpdateTransactionRequest{Type: &transfer})
	s.ErrorIs(err, apperrors.ErrInvalidTransfer)
	s.assertBalance(a, 900)

	stored, err := s.svc.Transaction.GetTransaction(s.ctx, s.userID, created.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.Expense, stored.Type)
}

func (s *LedgerSuite) TestUpdateMovesEffectBetweenWallets() {
	a := s.seedWallet(1_000)
	b := s.seedWallet(1_000)
	cat := s.seedCategory(s.userID, domain.CategoryExpense)

	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: a, CategoryID: &cat, Amount: amount(100), Type: domain.Expense})
	s.Require().NoError(err)

	updated, err := s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, created.TransactionID, dto.UpdateTransactionRequest{
		WalletID: &b,
		Amount:   ptr(amount(40)),
	})
	s.Require().NoError(err)
	s.Equal(b, updated.WalletID)
	s.assertBalance(a, 1_000)
	s.assertBalance(b, 960)

	// income keeps the category, which now points the wrong way
	income := domain.Income
	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, created.TransactionID, dto.UpdateTransactionRequest{Type: &income})
	s.ErrorIs(err, apperrors.ErrTypeMismatch)
	s.assertKind(err, apperrors.KindTypeMismatch)
	s.assertBalance(b, 960)

	incomeCat := s.seedCategory(s.userID, domain.CategoryIncome)
	updated, err = s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, created.TransactionID, dto.UpdateTransactionRequest{Type: &income, CategoryID: &incomeCat})
	s.Require().NoError(err)
	s.Equal(incomeCat, *updated.CategoryID)
	s.assertBalance(b, 1_040)
}

func (s *LedgerSuite) TestTransferAtomicityUnderStorageFault() {
	a := s.seedWallet(500)
	b := s.seedWallet(0)
	s.store.InjectFault(memory.OpWalletApplyDeltas, 0, errBoom)

	_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
		WalletID: a, ToWalletID: &b, Amount: amount(200), Type: domain.Transfer,
	})
	s.ErrorIs(err, apperrors.ErrConsistency)
	s.ErrorIs(err, errBoom)
	s.assertKind(err, apperrors.KindConsistency)

	s.assertBalance(a, 500)
	s.assertBalance(b, 0)
	s.Equal(0, s.activeTransactionCount(), "the saved transaction is compensated")
}

func (s *LedgerSuite) TestUpdateUnderStorageFaultIsCompensated() {
	a := s.seedWallet(500)
	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: a, Amount: amount(100), Type: domain.Expense})
	s.Require().NoError(err)

	s.store.InjectFault(memory.OpWalletApplyDeltas, 0, errBoom)
	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, created.TransactionID, dto.UpdateTransactionRequest{Amount: ptr(amount(300))})
	s.assertKind(err, apperrors.KindConsistency)

	s.assertBalance(a, 400)
	stored, err := s.svc.Transaction.GetTransaction(s.ctx, s.userID, created.TransactionID)
	s.Require().NoError(err)
	s.True(stored.Amount.Equal(amount(100)))
}

func (s *LedgerSuite) TestDeleteUnderStorageFaultIsCompensated() {
	a := s.seedWallet(500)
	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{WalletID: a, Amount: amount(100), Type: domain.Expense})
	s.Require().NoError(err)

	s.store.InjectFault(memory.OpWalletApplyDeltas, 0, errBoom)
	err = s.svc.Transaction.DeleteTransaction(s.ctx, s.userID, created.TransactionID)
	s.assertKind(err, apperrors.KindConsistency)

	s.assertBalance(a, 400)
	_, err = s.svc.Transaction.GetTransaction(s.ctx, s.userID, created.TransactionID)
	s.NoError(err, "the delete marker is compensated")
}

func (s *LedgerSuite) TestListTransactionsPagination() {
	w := s.seedWallet(0)
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, dto.CreateTransactionRequest{
			WalletID: w,
			Amount:   amount(int64(i + 1)),
			Type:     domain.Income,
			Date:     ptr(base.AddDate(0, 0, i)),
		})
		s.Require().NoError(err)
	}

	page, err := s.svc.Transaction.ListTransactions(s.ctx, s.userID, dto.ListTransactionsParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page.Transactions, 2)
	s.Require().NotNil(page.NextToken)
	s.True(page.Transactions[0].Amount.Equal(amount(5)), "newest first")

	page, err = s.svc.Transaction.ListTransactions(s.ctx, s.userID, dto.ListTransactionsParams{Limit: 2, NextToken: *page.NextToken})
	s.Require().NoError(err)
	s.Require().Len(page.Transactions, 2)
	s.True(page.Transactions[0].Amount.Equal(amount(3)))
	s.Require().NotNil(page.NextToken)

	page, err = s.svc.Transaction.ListTransactions(s.ctx, s.userID, dto.ListTransactionsParams{Limit: 2, NextToken: *page.NextToken})
	s.Require().NoError(err)
	s.Len(page.Transactions, 1)
	s.Nil(page.NextToken)

	_, err = s.svc.Transaction.ListTransactions(s.ctx, s.userID, dto.ListTransactionsParams{NextToken: "%%%"})
	s.assertKind(err, apperrors.KindValidation)

	to := base.AddDate(0, 0, 1)
	page, err = s.svc.Transaction.ListTransactions(s.ctx, s.userID, dto.ListTransactionsParams{To: &to})
	s.Require().NoError(err)
	s.Len(page.Transactions, 2, "the whole 'to' day is included")
}

// TestBalanceConservation runs a deterministic random mix of operations and checks after
// every step that each stored balance equals its replay from the transaction log.
func (s *LedgerSuite) TestBalanceConservation() {
	wallets := []string{s.seedWallet(10_000), s.seedWallet(0), s.seedWallet(-500)}
	types := []domain.TransactionType{domain.Income, domain.Expense, domain.Debt, domain.Loan, domain.Adjust, domain.Transfer}
	rng := rand.New(rand.NewSource(42))

	var active, deleted []string
	pick := func(ids []string) (string, []string) {
		i := rng.Intn(len(ids))
		id := ids[i]
		return id, append(ids[:i:i], ids[i+1:]...)
	}

	for step := 0; step < 200; step++ {
		switch op := rng.Intn(4); {
		case op == 0 || len(active) == 0:
			txType := types[rng.Intn(len(types))]
			req := dto.CreateTransactionRequest{
				WalletID: wallets[rng.Intn(len(wallets))],
				Amount:   amount(int64(rng.Intn(1_000) + 1)),
				Type:     txType,
			}
			if txType == domain.Adjust && rng.Intn(2) == 0 {
				req.Amount = req.Amount.Neg()
			}
			if txType == domain.Transfer {
				to := wallets[(indexOf(wallets, req.WalletID)+1+rng.Intn(len(wallets)-1))%len(wallets)]
				req.ToWalletID = &to
			}
			created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.userID, req)
			s.Require().NoError(err)
			active = append(active, created.TransactionID)
		case op == 1:
			id := active[rng.Intn(len(active))]
			_, err := s.svc.Transaction.UpdateTransaction(s.ctx, s.userID, id, dto.UpdateTransactionRequest{
				Amount: ptr(amount(int64(rng.Intn(1_000) + 1))),
			})
			s.Require().NoError(err)
		case op == 2:
			var id string
			id, active = pick(active)
			s.Require().NoError(s.svc.Transaction.DeleteTransaction(s.ctx, s.userID, id))
			deleted = append(deleted, id)
		default:
			if len(deleted) == 0 {
				continue
			}
			var id string
			id, deleted = pick(deleted)
			_, err := s.svc.Transaction.RestoreTransaction(s.ctx, s.userID, id)
			s.Require().NoError(err)
			active = append(active, id)
		}

		for _, w := range wallets {
			s.assertConserved(w)
		}
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
