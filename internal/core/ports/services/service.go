package services

// ServiceContainer holds instances of all the application services.
// It is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Transaction      TransactionSvcFacade
	GroupTransaction GroupTransactionSvcFacade
	GroupAuthorizer  GroupAuthorizerSvc
	Budget           BudgetSvcFacade
	SavingGoal       SavingGoalSvcFacade
	RecurringBill    RecurringBillSvcFacade
	Wallet           WalletSvcFacade
	Category         CategorySvcFacade
}
