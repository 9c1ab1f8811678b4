package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/finance_tracker/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

type transactionRepository struct {
	s    *Store
	undo *undoLog
}

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepository)(nil)

func visible(deleted bool, scope portsrepo.ReadScope) bool {
	return !deleted || scope == portsrepo.IncludeDeleted
}

func (r *transactionRepository) FindTransactionByID(ctx context.Context, userID, transactionID string, scope portsrepo.ReadScope) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transactions[transactionID]
	if !ok || t.UserID != userID || !visible(t.IsDeleted(), scope) {
		return nil, apperrors.ErrTransactionNotFound
	}
	return &t, nil
}

// FindTransactionForUpdate needs no lock of its own: units are already serialized.
func (r *transactionRepository) FindTransactionForUpdate(ctx context.Context, userID, transactionID string, scope portsrepo.ReadScope) (*domain.Transaction, error) {
	return r.FindTransactionByID(ctx, userID, transactionID, scope)
}

func (r *transactionRepository) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter, after *pagination.Cursor, limit int) ([]domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	txns := []domain.Transaction{}
	for _, t := range r.s.transactions {
		if t.UserID != userID || t.IsDeleted() || !matches(t, filter) {
			continue
		}
		if after != nil && !after.Before(t.Date, t.CreatedAt, t.TransactionID) {
			continue
		}
		txns = append(txns, t)
	}
	sort.Slice(txns, func(i, j int) bool {
		c := pagination.Cursor{Date: txns[i].Date, CreatedAt: txns[i].CreatedAt, ID: txns[i].TransactionID}
		return c.Before(txns[j].Date, txns[j].CreatedAt, txns[j].TransactionID)
	})
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

func matches(t domain.Transaction, f domain.TransactionFilter) bool {
	if f.WalletID != nil && t.WalletID != *f.WalletID && (t.ToWalletID == nil || *t.ToWalletID != *f.WalletID) {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Date.After(*f.To) {
		return false
	}
	return true
}

func (r *transactionRepository) ListTransactionsByWallet(ctx context.Context, walletID string) ([]domain.Transaction, error) {
	return r.ListTransactionsWhere(func(t domain.Transaction) bool {
		return t.WalletID == walletID || (t.ToWalletID != nil && *t.ToWalletID == walletID)
	}), nil
}

func (r *transactionRepository) ListTransactionsByReference(ctx context.Context, refType domain.ReferenceType, refID string) ([]domain.Transaction, error) {
	return r.ListTransactionsWhere(func(t domain.Transaction) bool {
		return t.ReferenceType != nil && *t.ReferenceType == refType && t.ReferenceID != nil && *t.ReferenceID == refID
	}), nil
}

// ListTransactionsWhere returns active transactions accepted by keep, oldest first.
func (r *transactionRepository) ListTransactionsWhere(keep func(domain.Transaction) bool) []domain.Transaction {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.activeTransactions(keep)
}

func (s *Store) activeTransactions(keep func(domain.Transaction) bool) []domain.Transaction {
	txns := []domain.Transaction{}
	for _, t := range s.transactions {
		if !t.IsDeleted() && keep(t) {
			txns = append(txns, t)
		}
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].CreatedAt.Before(txns[j].CreatedAt) })
	return txns
}

func (r *transactionRepository) SumExpenses(ctx context.Context, userID, categoryID string, walletID *string, from, to time.Time) (decimal.Decimal, error) {
	txns := r.ListTransactionsWhere(func(t domain.Transaction) bool {
		return t.UserID == userID &&
			t.Type == domain.Expense &&
			t.CategoryID != nil && *t.CategoryID == categoryID &&
			(walletID == nil || t.WalletID == *walletID) &&
			!t.Date.Before(from) && !t.Date.After(to)
	})
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

func (r *transactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpTransactionSave); err != nil {
		return err
	}
	if _, exists := r.s.transactions[txn.TransactionID]; exists {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
	}
	r.s.transactions[txn.TransactionID] = txn
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.transactions, txn.TransactionID)
		return nil
	})
	return nil
}

func (r *transactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.replace(OpTransactionUpdate, txn.TransactionID, func(cur *domain.Transaction) error {
		if cur.IsDeleted() {
			return apperrors.ErrTransactionNotFound
		}
		deletedAt := cur.DeletedAt
		*cur = txn
		cur.DeletedAt = deletedAt
		return nil
	})
}

func (r *transactionRepository) MarkTransactionDeleted(ctx context.Context, transactionID, userID string, now time.Time) error {
	return r.replace(OpTransactionMarkDeleted, transactionID, func(cur *domain.Transaction) error {
		if cur.IsDeleted() {
			return apperrors.ErrTransactionNotFound
		}
		deletedAt := now
		cur.DeletedAt = &deletedAt
		cur.Touch(userID, now)
		return nil
	})
}

func (r *transactionRepository) MarkTransactionRestored(ctx context.Context, transactionID, userID string, now time.Time) error {
	return r.replace(OpTransactionMarkRestored, transactionID, func(cur *domain.Transaction) error {
		if !cur.IsDeleted() {
			return apperrors.ErrNotDeleted
		}
		cur.DeletedAt = nil
		cur.Touch(userID, now)
		return nil
	})
}

// replace applies mutate to a stored transaction and records the prior version for undo.
func (r *transactionRepository) replace(op, transactionID string, mutate func(*domain.Transaction) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(op); err != nil {
		return err
	}
	cur, ok := r.s.transactions[transactionID]
	if !ok {
		return apperrors.ErrTransactionNotFound
	}
	prev := cur
	if err := mutate(&cur); err != nil {
		return err
	}
	r.s.transactions[transactionID] = cur
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.transactions[transactionID] = prev
		return nil
	})
	return nil
}

type groupTransactionRepository struct {
	s    *Store
	undo *undoLog
}

var _ portsrepo.GroupTransactionRepositoryFacade = (*groupTransactionRepository)(nil)

func (r *groupTransactionRepository) FindGroupTransactionForUpdate(ctx context.Context, groupID, transactionID string) (*domain.GroupTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.groupTransactions[transactionID]
	if !ok || t.GroupID != groupID || t.IsDeleted() {
		return nil, apperrors.ErrTransactionNotFound
	}
	t.Splits = append([]domain.Split(nil), t.Splits...)
	return &t, nil
}

func (r *groupTransactionRepository) ListGroupTransactions(ctx context.Context, groupID string, limit, offset int) ([]domain.GroupTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	txns := []domain.GroupTransaction{}
	for _, t := range r.s.groupTransactions {
		if t.GroupID == groupID && !t.IsDeleted() {
			txns = append(txns, t)
		}
	}
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.After(txns[j].Date)
		}
		return txns[i].TransactionID > txns[j].TransactionID
	})
	if offset >= len(txns) {
		return []domain.GroupTransaction{}, nil
	}
	txns = txns[offset:]
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

func (r *groupTransactionRepository) SaveGroupTransaction(ctx context.Context, txn domain.GroupTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpGroupTransactionSave); err != nil {
		return err
	}
	if _, exists := r.s.groupTransactions[txn.TransactionID]; exists {
		return fmt.Errorf("%w: group transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
	}
	txn.Splits = append([]domain.Split(nil), txn.Splits...)
	r.s.groupTransactions[txn.TransactionID] = txn
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.groupTransactions, txn.TransactionID)
		return nil
	})
	return nil
}

func (r *groupTransactionRepository) UpdateGroupTransaction(ctx context.Context, txn domain.GroupTransaction) error {
	txn.Splits = append([]domain.Split(nil), txn.Splits...)
	return r.replace(OpGroupTransactionUpdate, txn.TransactionID, func(cur *domain.GroupTransaction) error {
		if cur.IsDeleted() {
			return apperrors.ErrTransactionNotFound
		}
		*cur = txn
		return nil
	})
}

func (r *groupTransactionRepository) MarkGroupTransactionDeleted(ctx context.Context, transactionID, userID string, now time.Time) error {
	return r.replace(OpGroupTransactionDelete, transactionID, func(cur *domain.GroupTransaction) error {
		if cur.IsDeleted() {
			return apperrors.ErrTransactionNotFound
		}
		deletedAt := now
		cur.DeletedAt = &deletedAt
		cur.Touch(userID, now)
		return nil
	})
}

func (r *groupTransactionRepository) replace(op, transactionID string, mutate func(*domain.GroupTransaction) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(op); err != nil {
		return err
	}
	cur, ok := r.s.groupTransactions[transactionID]
	if !ok {
		return apperrors.ErrTransactionNotFound
	}
	prev := cur
	if err := mutate(&cur); err != nil {
		return err
	}
	r.s.groupTransactions[transactionID] = cur
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.groupTransactions[transactionID] = prev
		return nil
	})
	return nil
}
