package domain

import (
	"github.com/shopspring/decimal"
)

// Wallet is a personal wallet. Balance is mutated only through the wallet ledger.
type Wallet struct {
	WalletID       string          `json:"walletID"`
	UserID         string          `json:"userID"`
	Name           string          `json:"name"`
	CurrencyCode   string          `json:"currencyCode"`
	InitialBalance decimal.Decimal `json:"initialBalance"` // seed value, balance = seed + active effects
	Balance        decimal.Decimal `json:"balance"`        // may go negative for credit wallets
	IsDefault      bool            `json:"isDefault"`
	IsArchived     bool            `json:"isArchived"`
	SoftDelete
	AuditFields
}

// GroupWallet is a wallet shared by a group; it follows the same ledger contract as Wallet.
type GroupWallet struct {
	WalletID       string          `json:"walletID"`
	GroupID        string          `json:"groupID"`
	Name           string          `json:"name"`
	CurrencyCode   string          `json:"currencyCode"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Balance        decimal.Decimal `json:"balance"`
	IsDisabled     bool            `json:"isDisabled"`
	SoftDelete
	AuditFields
}

// WalletSummary aggregates a user's wallets. Archived wallets do not count towards TotalBalance.
type WalletSummary struct {
	Wallets      []Wallet        `json:"wallets"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

// Effect is the signed balance delta a transaction causes on one wallet.
type Effect struct {
	WalletID string          `json:"walletID"`
	Delta    decimal.Decimal `json:"delta"`
}
