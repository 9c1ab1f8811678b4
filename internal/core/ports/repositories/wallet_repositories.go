package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WalletReader defines read operations for personal wallets.
type WalletReader interface {
	// FindWalletByID returns the wallet if it exists, is owned by userID and is not deleted.
	FindWalletByID(ctx context.Context, userID, walletID string) (*domain.Wallet, error)

	// ListWalletsByUser returns every non-deleted wallet of a user, archived ones included.
	ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error)
}

// WalletWriter defines write operations for personal wallets.
type WalletWriter interface {
	SaveWallet(ctx context.Context, wallet domain.Wallet) error

	// SetDefaultWallet makes walletID the only default wallet of userID in one statement.
	// Fails with ErrNotFound if the wallet is missing, deleted or archived.
	SetDefaultWallet(ctx context.Context, userID, walletID string, now time.Time) error

	// OverwriteBalance assigns balance directly. Only the recalculation routine may call it.
	OverwriteBalance(ctx context.Context, walletID string, balance decimal.Decimal, userID string, now time.Time) error
}

// WalletRepositoryFacade combines all personal wallet repository interfaces.
type WalletRepositoryFacade interface {
	WalletReader
	WalletWriter
	LedgerWriter
}

// GroupWalletReader defines read operations for group wallets.
type GroupWalletReader interface {
	// FindGroupWalletByID returns the wallet if it belongs to groupID and is not deleted.
	FindGroupWalletByID(ctx context.Context, groupID, walletID string) (*domain.GroupWallet, error)
}

// GroupWalletWriter defines write operations for group wallets.
type GroupWalletWriter interface {
	SaveGroupWallet(ctx context.Context, wallet domain.GroupWallet) error
	DisableGroupWallet(ctx context.Context, groupID, walletID, userID string, now time.Time) error
}

// GroupWalletRepositoryFacade combines all group wallet repository interfaces.
type GroupWalletRepositoryFacade interface {
	GroupWalletReader
	GroupWalletWriter
	LedgerWriter
}

// GroupMembershipReader resolves a user's role in a group.
type GroupMembershipReader interface {
	// FindMembership fails with ErrNotFound when the user is not a member.
	FindMembership(ctx context.Context, groupID, userID string) (*domain.GroupMember, error)
}
