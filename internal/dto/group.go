package dto

import (
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SplitRequest is one member's share of a group transaction.
type SplitRequest struct {
	UserID string          `json:"userID" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateGroupTransactionRequest defines the data needed to create a group transaction.
// Transfers use FromWalletID/ToWalletID, every other type uses WalletID.
type CreateGroupTransactionRequest struct {
	WalletID     *string                `json:"walletID"`
	FromWalletID *string                `json:"fromWalletID"`
	ToWalletID   *string                `json:"toWalletID"`
	CategoryID   *string                `json:"categoryID"`
	Amount       decimal.Decimal        `json:"amount"`
	Type         domain.TransactionType `json:"type" binding:"required,txtype"`
	Date         *time.Time             `json:"date"`
	Note         string                 `json:"note" binding:"max=500"`
	PaidBy       string                 `json:"paidBy"`
	Splits       []SplitRequest         `json:"splits" binding:"omitempty,dive"`
}

// UpdateGroupTransactionRequest carries the fields to change. Nil means unchanged.
type UpdateGroupTransactionRequest struct {
	WalletID     *string                 `json:"walletID"`
	FromWalletID *string                 `json:"fromWalletID"`
	ToWalletID   *string                 `json:"toWalletID"`
	CategoryID   *string                 `json:"categoryID"`
	Amount       *decimal.Decimal        `json:"amount"`
	Type         *domain.TransactionType `json:"type" binding:"omitempty,txtype"`
	Date         *time.Time              `json:"date"`
	Note         *string                 `json:"note" binding:"omitempty,max=500"`
	PaidBy       *string                 `json:"paidBy"`
	Splits       *[]SplitRequest         `json:"splits"`
}

// ListGroupTransactionsParams defines query parameters for listing group transactions.
type ListGroupTransactionsParams struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ToSplits converts request splits to domain splits.
func ToSplits(reqs []SplitRequest) []domain.Split {
	if len(reqs) == 0 {
		return nil
	}
	splits := make([]domain.Split, len(reqs))
	for i, r := range reqs {
		splits[i] = domain.Split{UserID: r.UserID, Amount: r.Amount}
	}
	return splits
}
