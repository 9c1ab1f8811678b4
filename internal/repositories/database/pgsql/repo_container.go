package pgsql

import (
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
)

// NewRepositoryProvider binds every repository to db, which is either the pool or the
// pgx.Tx of a unit of work.
func NewRepositoryProvider(db DBTX) portsrepo.RepositoryProvider {
	base := BaseRepository{DB: db}
	return portsrepo.RepositoryProvider{
		WalletRepo:           &walletRepository{base},
		GroupWalletRepo:      &groupWalletRepository{base},
		GroupMemberRepo:      &membershipRepository{base},
		CategoryRepo:         &categoryRepository{base},
		TransactionRepo:      &transactionRepository{base},
		GroupTransactionRepo: &groupTransactionRepository{base},
		BudgetRepo:           &budgetRepository{base},
		SavingGoalRepo:       &savingGoalRepository{base},
		RecurringBillRepo:    &recurringBillRepository{base},
	}
}
