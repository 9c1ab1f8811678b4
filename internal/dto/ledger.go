package dto

import (
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GoalMovementRequest is a deposit into or withdrawal from a saving goal.
type GoalMovementRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *time.Time      `json:"date"`
	Note   string          `json:"note" binding:"max=500"`
}

// CreateCategoryRequest defines the data needed to create a category.
type CreateCategoryRequest struct {
	Name     string              `json:"name" binding:"required,max=100"`
	Type     domain.CategoryType `json:"type" binding:"required,oneof=income expense"`
	ParentID *string             `json:"parentID"`
}

// UpdateCategoryParentRequest moves a category under another parent, or to the top level when ParentID is nil.
type UpdateCategoryParentRequest struct {
	ParentID *string `json:"parentID"`
}
