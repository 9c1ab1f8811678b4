package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/shopspring/decimal"
)

// GroupRole is a member's role within a group.
type GroupRole string

const (
	RoleOwner  GroupRole = "OWNER"
	RoleAdmin  GroupRole = "ADMIN"
	RoleMember GroupRole = "MEMBER"
)

// rank orders roles so that a higher role satisfies a lower requirement.
func (r GroupRole) rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	}
	return 0
}

// Satisfies reports whether r grants at least the required role.
func (r GroupRole) Satisfies(required GroupRole) bool {
	return r.rank() > 0 && r.rank() >= required.rank()
}

// GroupMember is the membership of a user in a group.
type GroupMember struct {
	GroupID  string    `json:"groupID"`
	UserID   string    `json:"userID"`
	Role     GroupRole `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Split is one member's informational share of a group transaction.
type Split struct {
	UserID string          `json:"userID"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupTransaction mirrors Transaction for group wallets. Splits and PaidBy are
// informational; only the wallet ids and type drive balance effects.
type GroupTransaction struct {
	TransactionID string          `json:"transactionID"`
	GroupID       string          `json:"groupID"`
	WalletID      *string         `json:"walletID,omitempty"`     // non-transfer types
	FromWalletID  *string         `json:"fromWalletID,omitempty"` // transfers
	ToWalletID    *string         `json:"toWalletID,omitempty"`   // transfers
	CategoryID    *string         `json:"categoryID,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"type"`
	Date          time.Time       `json:"date"`
	Note          string          `json:"note"`
	PaidBy        string          `json:"paidBy,omitempty"`
	Splits        []Split         `json:"splits,omitempty"`
	SoftDelete
	AuditFields
}

// WalletIDs returns every group wallet the transaction touches.
func (t *GroupTransaction) WalletIDs() []string {
	if t.Type == Transfer {
		return []string{deref(t.FromWalletID), deref(t.ToWalletID)}
	}
	return []string{deref(t.WalletID)}
}

// Validate checks field-level rules for a group transaction.
func (t *GroupTransaction) Validate() error {
	if err := ValidateAmount(t.Type, t.Amount); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return apperrors.NewValidationError("date is required")
	}
	if t.Type == Transfer {
		if t.FromWalletID == nil || t.ToWalletID == nil || *t.FromWalletID == "" || *t.ToWalletID == "" {
			return fmt.Errorf("%w: fromWalletID and toWalletID are required for transfers", apperrors.ErrInvalidTransfer)
		}
		if *t.FromWalletID == *t.ToWalletID {
			return fmt.Errorf("%w: source and destination wallet must differ", apperrors.ErrInvalidTransfer)
		}
		if t.WalletID != nil {
			return apperrors.NewValidationError("walletID is not used for transfers, use fromWalletID")
		}
	} else {
		if t.WalletID == nil || *t.WalletID == "" {
			return apperrors.NewValidationError("walletID is required")
		}
		if t.FromWalletID != nil || t.ToWalletID != nil {
			return apperrors.NewValidationError("fromWalletID/toWalletID are only allowed for transfers")
		}
	}
	if t.CategoryID != nil && !t.Type.AllowsCategory() {
		return apperrors.NewValidationError(fmt.Sprintf("category is not allowed for %s transactions", t.Type))
	}
	if len(t.Splits) > 0 {
		sum := decimal.Zero
		for _, s := range t.Splits {
			if s.UserID == "" {
				return apperrors.NewValidationError("split userID is required")
			}
			if s.Amount.IsNegative() {
				return apperrors.NewValidationError("split amount must not be negative")
			}
			sum = sum.Add(s.Amount)
		}
		if !sum.Equal(t.Amount.Abs()) {
			return apperrors.NewValidationError(fmt.Sprintf("splits sum to %s, expected %s", sum, t.Amount.Abs()))
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
