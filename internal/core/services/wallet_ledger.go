package services

import (
	"context"
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/finance_tracker/internal/utils/accounting"
)

// WalletLedger is the only write path for wallet balances. Every call ends in one
// LedgerWriter.ApplyDeltas, i.e. one storage-level increment per touched wallet.
// It does not handle errors: storage failures go straight back to the enclosing unit.
type WalletLedger struct{}

// Apply adds effects to their wallets.
func (WalletLedger) Apply(ctx context.Context, writer portsrepo.LedgerWriter, effects []domain.Effect, userID string, now time.Time) error {
	return writer.ApplyDeltas(ctx, accounting.NetChanges(effects), userID, now)
}

// Revert subtracts effects from their wallets.
func (WalletLedger) Revert(ctx context.Context, writer portsrepo.LedgerWriter, effects []domain.Effect, userID string, now time.Time) error {
	return writer.ApplyDeltas(ctx, accounting.NetChanges(accounting.Revert(effects)), userID, now)
}

// ApplyNet reverts old and applies new in a single increment per wallet. Wallets whose
// net change is zero are not written.
func (WalletLedger) ApplyNet(ctx context.Context, writer portsrepo.LedgerWriter, old, new []domain.Effect, userID string, now time.Time) error {
	return writer.ApplyDeltas(ctx, accounting.NetChanges(accounting.Revert(old), new), userID, now)
}
