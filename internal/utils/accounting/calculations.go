package accounting

import (
	"sort"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the sign of a transaction type to its amount, as seen by the source wallet.
// Transfers return the source side; the destination receives the negation.
//
//	income, loan, adjust -> +amount (adjust carries its own sign)
//	expense, debt, transfer -> -amount
func SignedAmount(txType domain.TransactionType, amount decimal.Decimal) decimal.Decimal {
	switch txType {
	case domain.Income, domain.Loan, domain.Adjust:
		return amount
	case domain.Expense, domain.Debt, domain.Transfer:
		return amount.Neg()
	}
	return decimal.Zero
}

// Effects returns the balance effects of an active personal transaction.
// A deleted transaction has no effects.
func Effects(txn domain.Transaction) []domain.Effect {
	if txn.IsDeleted() {
		return nil
	}
	return effectsFor(txn.Type, txn.Amount, txn.WalletID, txn.ToWalletID)
}

// GroupEffects returns the balance effects of an active group transaction.
// Splits and PaidBy never contribute.
func GroupEffects(txn domain.GroupTransaction) []domain.Effect {
	if txn.IsDeleted() {
		return nil
	}
	if txn.Type == domain.Transfer {
		if txn.FromWalletID == nil {
			return nil
		}
		return effectsFor(txn.Type, txn.Amount, *txn.FromWalletID, txn.ToWalletID)
	}
	if txn.WalletID == nil {
		return nil
	}
	return effectsFor(txn.Type, txn.Amount, *txn.WalletID, nil)
}

func effectsFor(txType domain.TransactionType, amount decimal.Decimal, walletID string, toWalletID *string) []domain.Effect {
	effects := []domain.Effect{{WalletID: walletID, Delta: SignedAmount(txType, amount)}}
	if txType == domain.Transfer && toWalletID != nil {
		effects = append(effects, domain.Effect{WalletID: *toWalletID, Delta: amount})
	}
	return effects
}

// Revert returns the exact negation of effects.
func Revert(effects []domain.Effect) []domain.Effect {
	reverted := make([]domain.Effect, len(effects))
	for i, e := range effects {
		reverted[i] = domain.Effect{WalletID: e.WalletID, Delta: e.Delta.Neg()}
	}
	return reverted
}

// NetChanges sums effect groups per wallet and drops wallets whose net change is zero.
func NetChanges(groups ...[]domain.Effect) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal)
	for _, effects := range groups {
		for _, e := range effects {
			net[e.WalletID] = net[e.WalletID].Add(e.Delta)
		}
	}
	for walletID, delta := range net {
		if delta.IsZero() {
			delete(net, walletID)
		}
	}
	return net
}

// SortedWalletIDs returns the keys of a change set in a stable order, so row locks
// are always taken in the same sequence.
func SortedWalletIDs(changes map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReplayBalance computes initial + the effects of every active transaction on walletID.
func ReplayBalance(walletID string, initial decimal.Decimal, txns []domain.Transaction) decimal.Decimal {
	balance := initial
	for _, txn := range txns {
		for _, e := range Effects(txn) {
			if e.WalletID == walletID {
				balance = balance.Add(e.Delta)
			}
		}
	}
	return balance
}
