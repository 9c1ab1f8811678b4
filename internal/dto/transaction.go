package dto

import (
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to create a personal transaction.
type CreateTransactionRequest struct {
	WalletID   string                 `json:"walletID" binding:"required"`
	ToWalletID *string                `json:"toWalletID"` // transfers only
	CategoryID *string                `json:"categoryID"`
	Amount     decimal.Decimal        `json:"amount"`
	Type       domain.TransactionType `json:"type" binding:"required,txtype"`
	Date       *time.Time             `json:"date"` // defaults to now
	Note       string                 `json:"note" binding:"max=500"`
}

// UpdateTransactionRequest carries the fields to change. Nil means unchanged.
// Changing the type to one that cannot carry a destination wallet or category drops them.
type UpdateTransactionRequest struct {
	WalletID   *string                 `json:"walletID"`
	ToWalletID *string                 `json:"toWalletID"`
	CategoryID *string                 `json:"categoryID"`
	Amount     *decimal.Decimal        `json:"amount"`
	Type       *domain.TransactionType `json:"type" binding:"omitempty,txtype"`
	Date       *time.Time              `json:"date"`
	Note       *string                 `json:"note" binding:"omitempty,max=500"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken  string     `form:"nextToken"`
	WalletID   *string    `form:"walletID"`
	CategoryID *string    `form:"categoryID"`
	Type       *string    `form:"type" binding:"omitempty,txtype"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
}

// WalletRef is the compact wallet shape embedded in transaction responses.
type WalletRef struct {
	WalletID string          `json:"walletID"`
	Name     string          `json:"name"`
	Balance  decimal.Decimal `json:"balance"`
}

// CategoryRef is the compact category shape embedded in transaction responses.
type CategoryRef struct {
	CategoryID string              `json:"categoryID"`
	Name       string              `json:"name"`
	Type       domain.CategoryType `json:"type"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string                 `json:"transactionID"`
	WalletID      string                 `json:"walletID"`
	ToWalletID    *string                `json:"toWalletID,omitempty"`
	CategoryID    *string                `json:"categoryID,omitempty"`
	Amount        decimal.Decimal        `json:"amount"`
	Type          domain.TransactionType `json:"type"`
	Date          time.Time              `json:"date"`
	Note          string                 `json:"note"`
	ReferenceType *domain.ReferenceType  `json:"referenceType,omitempty"`
	ReferenceID   *string                `json:"referenceID,omitempty"`
	Wallet        *WalletRef             `json:"wallet,omitempty"`
	ToWallet      *WalletRef             `json:"toWallet,omitempty"`
	Category      *CategoryRef           `json:"category,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	LastUpdatedAt time.Time              `json:"lastUpdatedAt"`
}

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		WalletID:      txn.WalletID,
		ToWalletID:    txn.ToWalletID,
		CategoryID:    txn.CategoryID,
		Amount:        txn.Amount,
		Type:          txn.Type,
		Date:          txn.Date,
		Note:          txn.Note,
		ReferenceType: txn.ReferenceType,
		ReferenceID:   txn.ReferenceID,
		CreatedAt:     txn.CreatedAt,
		LastUpdatedAt: txn.LastUpdatedAt,
	}
}

// ToTransactionDetailsResponse converts populated details, including the referenced wallets and category.
func ToTransactionDetailsResponse(d *domain.TransactionDetails) TransactionResponse {
	resp := ToTransactionResponse(&d.Transaction)
	if d.Wallet != nil {
		resp.Wallet = &WalletRef{WalletID: d.Wallet.WalletID, Name: d.Wallet.Name, Balance: d.Wallet.Balance}
	}
	if d.ToWallet != nil {
		resp.ToWallet = &WalletRef{WalletID: d.ToWallet.WalletID, Name: d.ToWallet.Name, Balance: d.ToWallet.Balance}
	}
	if d.Category != nil {
		resp.Category = &CategoryRef{CategoryID: d.Category.CategoryID, Name: d.Category.Name, Type: d.Category.Type}
	}
	return resp
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}
