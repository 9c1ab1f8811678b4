package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingGoal tracks money set aside from a wallet. CurrentAmount is derived from
// InitialAmount plus the goal's tagged deposit (expense) and withdrawal (income) transactions.
type SavingGoal struct {
	GoalID        string          `json:"goalID"`
	UserID        string          `json:"userID"`
	WalletID      string          `json:"walletID"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	InitialAmount decimal.Decimal `json:"initialAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	IsCompleted   bool            `json:"isCompleted"`
	IsActive      bool            `json:"isActive"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	SoftDelete
	AuditFields
}

// SetProgress updates CurrentAmount and flips completion in both directions.
func (g *SavingGoal) SetProgress(current decimal.Decimal) {
	g.CurrentAmount = current
	g.IsCompleted = current.GreaterThanOrEqual(g.TargetAmount)
	g.IsActive = !g.IsCompleted
}

// GoalMovement is the result of a deposit or withdrawal.
type GoalMovement struct {
	Goal        SavingGoal  `json:"goal"`
	Transaction Transaction `json:"transaction"`
}
