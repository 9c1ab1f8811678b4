// Package memory is a standalone storage backend without multi-row transactions.
// Units of work run one at a time and undo their writes in reverse order when a step fails.
package memory

import (
	"fmt"
	"sync"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
)

// Operation names accepted by InjectFault.
const (
	OpWalletApplyDeltas       = "wallet.ApplyDeltas"
	OpGroupWalletApplyDeltas  = "groupWallet.ApplyDeltas"
	OpTransactionSave         = "transaction.Save"
	OpTransactionUpdate       = "transaction.Update"
	OpTransactionMarkDeleted  = "transaction.MarkDeleted"
	OpTransactionMarkRestored = "transaction.MarkRestored"
	OpGroupTransactionSave    = "groupTransaction.Save"
	OpGroupTransactionUpdate  = "groupTransaction.Update"
	OpGroupTransactionDelete  = "groupTransaction.MarkDeleted"
	OpSavingGoalSyncProgress  = "savingGoal.SyncProgress"
	OpRecurringBillAdvance    = "recurringBill.AdvanceSchedule"
	OpCategoryUpdateParent    = "category.UpdateParent"
	OpWalletOverwriteBalance  = "wallet.OverwriteBalance"
	OpGroupWalletDisable      = "groupWallet.Disable"
	OpWalletSetDefault        = "wallet.SetDefault"
)

type fault struct {
	skip int
	err  error
}

// Store holds every entity in maps guarded by mu. unitMu serializes units of work,
// which stands in for the row locks a transactional backend would take.
type Store struct {
	mu     sync.RWMutex
	unitMu sync.Mutex

	wallets           map[string]domain.Wallet
	groupWallets      map[string]domain.GroupWallet
	members           map[string]domain.GroupMember
	categories        map[string]domain.Category
	transactions      map[string]domain.Transaction
	groupTransactions map[string]domain.GroupTransaction
	budgets           map[string]domain.Budget
	goals             map[string]domain.SavingGoal
	bills             map[string]domain.RecurringBill

	faults map[string][]fault
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		wallets:           make(map[string]domain.Wallet),
		groupWallets:      make(map[string]domain.GroupWallet),
		members:           make(map[string]domain.GroupMember),
		categories:        make(map[string]domain.Category),
		transactions:      make(map[string]domain.Transaction),
		groupTransactions: make(map[string]domain.GroupTransaction),
		budgets:           make(map[string]domain.Budget),
		goals:             make(map[string]domain.SavingGoal),
		bills:             make(map[string]domain.RecurringBill),
		faults:            make(map[string][]fault),
	}
}

// InjectFault makes the call to op that follows skip successful calls fail with err.
// Faults for the same op queue up in the order they were injected.
func (s *Store) InjectFault(op string, skip int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], fault{skip: skip, err: err})
}

// check consumes one call of op against the fault queue. Callers hold s.mu.
func (s *Store) check(op string) error {
	queue := s.faults[op]
	if len(queue) == 0 {
		return nil
	}
	if queue[0].skip > 0 {
		queue[0].skip--
		return nil
	}
	err := queue[0].err
	s.faults[op] = queue[1:]
	return fmt.Errorf("%s: %w", op, err)
}

// AddGroupMember registers a membership. Group administration lives outside the ledger.
func (s *Store) AddGroupMember(member domain.GroupMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[memberKey(member.GroupID, member.UserID)] = member
}

func memberKey(groupID, userID string) string {
	return groupID + "/" + userID
}

// Repositories returns a provider that writes straight through, outside any unit.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return s.provider(nil)
}

func (s *Store) provider(undo *undoLog) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		WalletRepo:           &walletRepository{s: s, undo: undo},
		GroupWalletRepo:      &groupWalletRepository{s: s, undo: undo},
		GroupMemberRepo:      &membershipRepository{s: s},
		CategoryRepo:         &categoryRepository{s: s, undo: undo},
		TransactionRepo:      &transactionRepository{s: s, undo: undo},
		GroupTransactionRepo: &groupTransactionRepository{s: s, undo: undo},
		BudgetRepo:           &budgetRepository{s: s},
		SavingGoalRepo:       &savingGoalRepository{s: s, undo: undo},
		RecurringBillRepo:    &recurringBillRepository{s: s, undo: undo},
	}
}
