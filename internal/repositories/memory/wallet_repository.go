package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/finance_tracker/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type walletRepository struct {
	s    *Store
	undo *undoLog
}

var _ portsrepo.WalletRepositoryFacade = (*walletRepository)(nil)

func (r *walletRepository) FindWalletByID(ctx context.Context, userID, walletID string) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.wallets[walletID]
	if !ok || w.UserID != userID || w.IsDeleted() {
		return nil, apperrors.ErrWalletNotFound
	}
	return &w, nil
}

func (r *walletRepository) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wallets := []domain.Wallet{}
	for _, w := range r.s.wallets {
		if w.UserID == userID && !w.IsDeleted() {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].CreatedAt.Before(wallets[j].CreatedAt) })
	return wallets, nil
}

func (r *walletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.wallets[wallet.WalletID]; exists {
		return fmt.Errorf("%w: wallet %s", apperrors.ErrDuplicate, wallet.WalletID)
	}
	r.s.wallets[wallet.WalletID] = wallet
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.wallets, wallet.WalletID)
		return nil
	})
	return nil
}

func (r *walletRepository) SetDefaultWallet(ctx context.Context, userID, walletID string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpWalletSetDefault); err != nil {
		return err
	}
	target, ok := r.s.wallets[walletID]
	if !ok || target.UserID != userID || target.IsDeleted() || target.IsArchived {
		return apperrors.ErrWalletNotFound
	}
	previous := make(map[string]domain.Wallet)
	for id, w := range r.s.wallets {
		if w.UserID != userID {
			continue
		}
		isDefault := id == walletID
		if w.IsDefault != isDefault {
			previous[id] = w
			w.IsDefault = isDefault
			w.Touch(userID, now)
			r.s.wallets[id] = w
		}
	}
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		for id, w := range previous {
			r.s.wallets[id] = w
		}
		return nil
	})
	return nil
}

func (r *walletRepository) OverwriteBalance(ctx context.Context, walletID string, balance decimal.Decimal, userID string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpWalletOverwriteBalance); err != nil {
		return err
	}
	w, ok := r.s.wallets[walletID]
	if !ok || w.IsDeleted() {
		return apperrors.ErrWalletNotFound
	}
	prev := w
	w.Balance = balance
	w.Touch(userID, now)
	r.s.wallets[walletID] = w
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		cur := r.s.wallets[walletID]
		cur.Balance = prev.Balance
		cur.AuditFields = prev.AuditFields
		r.s.wallets[walletID] = cur
		return nil
	})
	return nil
}

// ApplyDeltas adds each delta under the store lock. All wallets are checked before any is
// changed, so a missing wallet leaves every balance untouched.
func (r *walletRepository) ApplyDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if err := r.s.applyWalletDeltas(deltas, userID, now); err != nil {
		return err
	}
	r.undo.record(func() error {
		return r.s.applyWalletDeltas(negate(deltas), userID, now)
	})
	return nil
}

func (s *Store) applyWalletDeltas(deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpWalletApplyDeltas); err != nil {
		return err
	}
	ids := accounting.SortedWalletIDs(deltas)
	for _, id := range ids {
		if w, ok := s.wallets[id]; !ok || w.IsDeleted() {
			return fmt.Errorf("%w: %s not found during balance update", apperrors.ErrWalletNotFound, id)
		}
	}
	for _, id := range ids {
		w := s.wallets[id]
		w.Balance = w.Balance.Add(deltas[id])
		w.Touch(userID, now)
		s.wallets[id] = w
	}
	return nil
}

func negate(deltas map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(deltas))
	for id, d := range deltas {
		out[id] = d.Neg()
	}
	return out
}

type groupWalletRepository struct {
	s    *Store
	undo *undoLog
}

var _ portsrepo.GroupWalletRepositoryFacade = (*groupWalletRepository)(nil)

func (r *groupWalletRepository) FindGroupWalletByID(ctx context.Context, groupID, walletID string) (*domain.GroupWallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.groupWallets[walletID]
	if !ok || w.GroupID != groupID || w.IsDeleted() {
		return nil, apperrors.ErrWalletNotFound
	}
	return &w, nil
}

func (r *groupWalletRepository) SaveGroupWallet(ctx context.Context, wallet domain.GroupWallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.groupWallets[wallet.WalletID]; exists {
		return fmt.Errorf("%w: group wallet %s", apperrors.ErrDuplicate, wallet.WalletID)
	}
	r.s.groupWallets[wallet.WalletID] = wallet
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.groupWallets, wallet.WalletID)
		return nil
	})
	return nil
}

func (r *groupWalletRepository) DisableGroupWallet(ctx context.Context, groupID, walletID, userID string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpGroupWalletDisable); err != nil {
		return err
	}
	w, ok := r.s.groupWallets[walletID]
	if !ok || w.GroupID != groupID || w.IsDeleted() {
		return apperrors.ErrWalletNotFound
	}
	prev := w
	w.IsDisabled = true
	w.Touch(userID, now)
	r.s.groupWallets[walletID] = w
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.groupWallets[walletID] = prev
		return nil
	})
	return nil
}

func (r *groupWalletRepository) ApplyDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if err := r.s.applyGroupWalletDeltas(deltas, userID, now); err != nil {
		return err
	}
	r.undo.record(func() error {
		return r.s.applyGroupWalletDeltas(negate(deltas), userID, now)
	})
	return nil
}

func (s *Store) applyGroupWalletDeltas(deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpGroupWalletApplyDeltas); err != nil {
		return err
	}
	ids := accounting.SortedWalletIDs(deltas)
	for _, id := range ids {
		if w, ok := s.groupWallets[id]; !ok || w.IsDeleted() {
			return fmt.Errorf("%w: group wallet %s not found during balance update", apperrors.ErrWalletNotFound, id)
		}
	}
	for _, id := range ids {
		w := s.groupWallets[id]
		w.Balance = w.Balance.Add(deltas[id])
		w.Touch(userID, now)
		s.groupWallets[id] = w
	}
	return nil
}

type membershipRepository struct {
	s *Store
}

var _ portsrepo.GroupMembershipReader = (*membershipRepository)(nil)

func (r *membershipRepository) FindMembership(ctx context.Context, groupID, userID string) (*domain.GroupMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.members[memberKey(groupID, userID)]
	if !ok {
		return nil, apperrors.NewNotFoundError("group membership not found")
	}
	return &m, nil
}
