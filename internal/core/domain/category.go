package domain

// CategoryType is the direction a category tracks.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// IsValid reports whether t is a known category type.
func (t CategoryType) IsValid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category belongs to a user or, for group categories, to a group (OwnerID holds either).
type Category struct {
	CategoryID string       `json:"categoryID"`
	OwnerID    string       `json:"ownerID"`
	Name       string       `json:"name"`
	Type       CategoryType `json:"type"`
	ParentID   *string      `json:"parentID,omitempty"`
	SoftDelete
	AuditFields
}
