package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps expense spending for a category (and optionally one wallet) over a window.
// Spent is never stored; it is recomputed from transactions on every read.
type Budget struct {
	BudgetID    string          `json:"budgetID"`
	UserID      string          `json:"userID"`
	Name        string          `json:"name"`
	CategoryID  string          `json:"categoryID"`
	WalletID    *string         `json:"walletID,omitempty"`
	LimitAmount decimal.Decimal `json:"limitAmount"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	SoftDelete
	AuditFields
}

// BudgetStatus is a budget together with its derived spending.
type BudgetStatus struct {
	Budget
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	IsExceeded bool            `json:"isExceeded"`
}

// NewBudgetStatus derives remaining/exceeded from spent.
func NewBudgetStatus(b Budget, spent decimal.Decimal) BudgetStatus {
	return BudgetStatus{
		Budget:     b,
		Spent:      spent,
		Remaining:  b.LimitAmount.Sub(spent),
		IsExceeded: spent.GreaterThan(b.LimitAmount),
	}
}
