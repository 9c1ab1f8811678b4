package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/SscSPs/finance_tracker/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for personal transactions.
type TransactionReader interface {
	// FindTransactionByID returns a transaction owned by userID.
	FindTransactionByID(ctx context.Context, userID, transactionID string, scope ReadScope) (*domain.Transaction, error)

	// FindTransactionForUpdate is FindTransactionByID with a row lock held until the unit ends.
	FindTransactionForUpdate(ctx context.Context, userID, transactionID string, scope ReadScope) (*domain.Transaction, error)

	// ListTransactions returns a newest-first page of active transactions.
	ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter, after *pagination.Cursor, limit int) ([]domain.Transaction, error)

	// ListTransactionsByWallet returns every active transaction touching walletID, as source or destination.
	ListTransactionsByWallet(ctx context.Context, walletID string) ([]domain.Transaction, error)

	// ListTransactionsByReference returns every active transaction tagged with the reference.
	ListTransactionsByReference(ctx context.Context, refType domain.ReferenceType, refID string) ([]domain.Transaction, error)

	// SumExpenses sums active expense transactions for a category (and optional wallet)
	// dated within [from, to].
	SumExpenses(ctx context.Context, userID, categoryID string, walletID *string, from, to time.Time) (decimal.Decimal, error)
}

// TransactionWriter defines write operations for personal transactions.
type TransactionWriter interface {
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// MarkTransactionDeleted soft-deletes an active transaction; ErrNotFound if it is already deleted.
	MarkTransactionDeleted(ctx context.Context, transactionID, userID string, now time.Time) error

	// MarkTransactionRestored clears the soft-delete marker; ErrNotDeleted if it is active.
	MarkTransactionRestored(ctx context.Context, transactionID, userID string, now time.Time) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// GroupTransactionReader defines read operations for group transactions.
type GroupTransactionReader interface {
	FindGroupTransactionForUpdate(ctx context.Context, groupID, transactionID string) (*domain.GroupTransaction, error)
	ListGroupTransactions(ctx context.Context, groupID string, limit, offset int) ([]domain.GroupTransaction, error)
}

// GroupTransactionWriter defines write operations for group transactions.
type GroupTransactionWriter interface {
	SaveGroupTransaction(ctx context.Context, txn domain.GroupTransaction) error
	UpdateGroupTransaction(ctx context.Context, txn domain.GroupTransaction) error
	MarkGroupTransactionDeleted(ctx context.Context, transactionID, userID string, now time.Time) error
}

// GroupTransactionRepositoryFacade combines all group transaction repository interfaces.
type GroupTransactionRepositoryFacade interface {
	GroupTransactionReader
	GroupTransactionWriter
}
