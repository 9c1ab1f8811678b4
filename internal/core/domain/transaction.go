package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType encodes the direction of a transaction. Amount is always a magnitude.
type TransactionType string

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Debt     TransactionType = "debt"
	Loan     TransactionType = "loan"
	Transfer TransactionType = "transfer"
	Adjust   TransactionType = "adjust"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Debt, Loan, Transfer, Adjust:
		return true
	}
	return false
}

// CategoryDirection returns the category type implied by t, if any.
// Only income and expense transactions imply a direction.
func (t TransactionType) CategoryDirection() (CategoryType, bool) {
	switch t {
	case Income:
		return CategoryIncome, true
	case Expense:
		return CategoryExpense, true
	}
	return "", false
}

// AllowsCategory reports whether a transaction of type t may reference a category.
func (t TransactionType) AllowsCategory() bool {
	return t != Transfer && t != Adjust
}

// ReferenceType tags transactions created on behalf of another entity.
type ReferenceType string

const (
	RefSavingGoal    ReferenceType = "saving_goal"
	RefRecurringBill ReferenceType = "recurring_bill"
)

// Transaction is a personal transaction.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	UserID        string          `json:"userID"`
	WalletID      string          `json:"walletID"`
	ToWalletID    *string         `json:"toWalletID,omitempty"` // set only for transfers
	CategoryID    *string         `json:"categoryID,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"type"`
	Date          time.Time       `json:"date"`
	Note          string          `json:"note"`
	ReferenceType *ReferenceType  `json:"referenceType,omitempty"`
	ReferenceID   *string         `json:"referenceID,omitempty"`
	SoftDelete
	AuditFields
}

// Validate checks the field-level rules that do not need storage lookups.
func (t *Transaction) Validate() error {
	if err := ValidateAmount(t.Type, t.Amount); err != nil {
		return err
	}
	if t.WalletID == "" {
		return apperrors.NewValidationError("walletID is required")
	}
	if t.Date.IsZero() {
		return apperrors.NewValidationError("date is required")
	}
	if t.Type == Transfer {
		if t.ToWalletID == nil || *t.ToWalletID == "" {
			return fmt.Errorf("%w: toWalletID is required for transfers", apperrors.ErrInvalidTransfer)
		}
		if *t.ToWalletID == t.WalletID {
			return fmt.Errorf("%w: source and destination wallet must differ", apperrors.ErrInvalidTransfer)
		}
	} else if t.ToWalletID != nil {
		return apperrors.NewValidationError("toWalletID is only allowed for transfers")
	}
	if t.CategoryID != nil && !t.Type.AllowsCategory() {
		return apperrors.NewValidationError(fmt.Sprintf("category is not allowed for %s transactions", t.Type))
	}
	return nil
}

// MaxAmountScale is the number of decimal places money columns store.
const MaxAmountScale = 4

// ValidateAmount enforces amount > 0, except for adjust which carries a signed, non-zero correction.
// Amounts finer than MaxAmountScale decimal places are rejected rather than rounded.
func ValidateAmount(txType TransactionType, amount decimal.Decimal) error {
	if !txType.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid transaction type %q", txType))
	}
	if !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places are allowed", apperrors.ErrInvalidAmount, MaxAmountScale)
	}
	if txType == Adjust {
		if amount.IsZero() {
			return fmt.Errorf("%w: adjustment must be non-zero", apperrors.ErrInvalidAmount)
		}
		return nil
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrInvalidAmount)
	}
	return nil
}

// ReferencesGoal reports whether the transaction was created by the saving goal engine.
func (t *Transaction) ReferencesGoal() bool {
	return t.ReferenceType != nil && *t.ReferenceType == RefSavingGoal && t.ReferenceID != nil
}

// TransactionDetails is a transaction with its referenced wallets and category populated.
type TransactionDetails struct {
	Transaction
	Wallet   *Wallet   `json:"wallet,omitempty"`
	ToWallet *Wallet   `json:"toWallet,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	WalletID   *string
	CategoryID *string
	Type       *TransactionType
	From       *time.Time
	To         *time.Time
}
