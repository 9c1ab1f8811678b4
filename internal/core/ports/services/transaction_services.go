package services

import (
	"context"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/finance_tracker/internal/dto"
)

// TransactionReaderSvc defines read operations for personal transactions.
type TransactionReaderSvc interface {
	GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionDetails, error)
	ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines the ledger mutations on personal transactions.
// Each call is one atomic unit: the transaction row and its balance effect change together.
type TransactionWriterSvc interface {
	CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.TransactionDetails, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, req dto.UpdateTransactionRequest) (*domain.TransactionDetails, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	RestoreTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionDetails, error)
}

// TransactionUnitSvc lets other engines create a transaction inside their own unit.
type TransactionUnitSvc interface {
	CreateInUnit(ctx context.Context, repos portsrepo.RepositoryProvider, userID string, txn domain.Transaction) (*domain.TransactionDetails, error)
}

// TransactionSvcFacade combines all transaction service interfaces.
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionUnitSvc
}
