package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring bill fires.
type Frequency string

const (
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Yearly   Frequency = "yearly"
	Custom   Frequency = "custom" // treated as daily
)

// IsValid reports whether f is a known frequency.
func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Yearly, Custom:
		return true
	}
	return false
}

// RecurringBill is paid by creating an income or expense transaction on its wallet.
type RecurringBill struct {
	BillID     string          `json:"billID"`
	UserID     string          `json:"userID"`
	WalletID   string          `json:"walletID"`
	CategoryID *string         `json:"categoryID,omitempty"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Type       TransactionType `json:"type"` // income or expense
	Frequency  Frequency       `json:"frequency"`
	NextRun    time.Time       `json:"nextRun"`
	LastPaidAt *time.Time      `json:"lastPaidAt,omitempty"`
	EndsAt     *time.Time      `json:"endsAt,omitempty"`
	IsActive   bool            `json:"isActive"`
	SoftDelete
	AuditFields
}

// IsExpired reports whether the bill's hard stop is before now.
func (b *RecurringBill) IsExpired(now time.Time) bool {
	return b.EndsAt != nil && b.EndsAt.Before(now)
}

// BillPayment is the result of paying a recurring bill.
type BillPayment struct {
	Bill        RecurringBill `json:"bill"`
	Transaction Transaction   `json:"transaction"`
}

// BillRunSummary reports the outcome of a due-bill sweep.
type BillRunSummary struct {
	Due     int      `json:"due"`
	Paid    int      `json:"paid"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
