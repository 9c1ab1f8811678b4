package services

import (
	"context"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/SscSPs/finance_tracker/internal/dto"
)

// GroupAuthorizerSvc gates group-scoped operations on membership and role.
type GroupAuthorizerSvc interface {
	// AuthorizeGroupAction fails with ErrForbidden unless userID holds requiredRole or higher in groupID.
	AuthorizeGroupAction(ctx context.Context, userID, groupID string, requiredRole domain.GroupRole) error
}

// GroupTransactionSvcFacade defines operations on group transactions and group wallets.
type GroupTransactionSvcFacade interface {
	CreateGroupTransaction(ctx context.Context, userID, groupID string, req dto.CreateGroupTransactionRequest) (*domain.GroupTransaction, error)
	UpdateGroupTransaction(ctx context.Context, userID, groupID, transactionID string, req dto.UpdateGroupTransactionRequest) (*domain.GroupTransaction, error)
	DeleteGroupTransaction(ctx context.Context, userID, groupID, transactionID string) error
	ListGroupTransactions(ctx context.Context, userID, groupID string, params dto.ListGroupTransactionsParams) ([]domain.GroupTransaction, error)

	// DisableGroupWallet is a management operation and needs ADMIN or OWNER.
	DisableGroupWallet(ctx context.Context, userID, groupID, walletID string) error
}
