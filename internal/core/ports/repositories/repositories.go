package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// A provider is either bound to the connection pool or to a single UnitOfWork.
type RepositoryProvider struct {
	WalletRepo           WalletRepositoryFacade
	GroupWalletRepo      GroupWalletRepositoryFacade
	GroupMemberRepo      GroupMembershipReader
	CategoryRepo         CategoryRepositoryFacade
	TransactionRepo      TransactionRepositoryFacade
	GroupTransactionRepo GroupTransactionRepositoryFacade
	BudgetRepo           BudgetRepositoryFacade
	SavingGoalRepo       SavingGoalRepositoryFacade
	RecurringBillRepo    RecurringBillRepositoryFacade
}
