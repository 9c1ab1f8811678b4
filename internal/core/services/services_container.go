package services

import (
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/platform/config"
	"github.com/SscSPs/finance_tracker/internal/platform/observability"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// repos is bound to the connection pool and serves reads; uow runs every write.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, uow portsrepo.UnitOfWork, metrics *observability.Metrics, opts ...Option) *portssvc.ServiceContainer {
	uow = InstrumentUnitOfWork(uow, metrics)
	opts = append([]Option{WithMetrics(metrics)}, opts...)

	container := &portssvc.ServiceContainer{}

	// the authorizer goes first since group-scoped services depend on it
	container.GroupAuthorizer = NewGroupAuthorizer(repos.GroupMemberRepo, opts...)
	groupOpts := append(opts[:len(opts):len(opts)], WithGroupAuthorizer(container.GroupAuthorizer))

	container.Transaction = NewTransactionService(repos, uow, opts...)
	container.GroupTransaction = NewGroupTransactionService(repos, uow, groupOpts...)
	container.Budget = NewBudgetService(repos.BudgetRepo, repos.TransactionRepo, opts...)
	container.SavingGoal = NewSavingGoalService(repos, uow, container.Transaction, opts...)
	container.RecurringBill = NewRecurringBillService(repos, uow, container.Transaction, cfg.BillSchedulerConcurrency, opts...)
	container.Wallet = NewWalletService(repos, uow, opts...)
	container.Category = NewCategoryService(repos, uow, opts...)

	return container
}
