package repositories

import (
	"context"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
)

// CategoryReader defines read operations for categories.
type CategoryReader interface {
	// FindCategoryByID returns the category if it exists, belongs to ownerID (a user or a
	// group) and is not deleted.
	FindCategoryByID(ctx context.Context, ownerID, categoryID string) (*domain.Category, error)
}

// CategoryWriter defines write operations for categories.
type CategoryWriter interface {
	SaveCategory(ctx context.Context, category domain.Category) error
	UpdateCategoryParent(ctx context.Context, category domain.Category) error
}

// CategoryRepositoryFacade combines all category repository interfaces.
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
