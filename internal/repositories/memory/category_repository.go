package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
)

type categoryRepository struct {
	s    *Store
	undo *undoLog
}

var _ portsrepo.CategoryRepositoryFacade = (*categoryRepository)(nil)

func (r *categoryRepository) FindCategoryByID(ctx context.Context, ownerID, categoryID string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[categoryID]
	if !ok || c.OwnerID != ownerID || c.IsDeleted() {
		return nil, apperrors.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *categoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.categories[category.CategoryID]; exists {
		return fmt.Errorf("%w: category %s", apperrors.ErrDuplicate, category.CategoryID)
	}
	r.s.categories[category.CategoryID] = category
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.categories, category.CategoryID)
		return nil
	})
	return nil
}

func (r *categoryRepository) UpdateCategoryParent(ctx context.Context, category domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpCategoryUpdateParent); err != nil {
		return err
	}
	cur, ok := r.s.categories[category.CategoryID]
	if !ok || cur.IsDeleted() {
		return apperrors.ErrCategoryNotFound
	}
	prev := cur
	cur.ParentID = category.ParentID
	cur.AuditFields = category.AuditFields
	r.s.categories[category.CategoryID] = cur
	r.undo.record(func() error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.categories[category.CategoryID] = prev
		return nil
	})
	return nil
}

type budgetRepository struct {
	s *Store
}

var _ portsrepo.BudgetRepositoryFacade = (*budgetRepository)(nil)

func (r *budgetRepository) FindBudgetByID(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.budgets[budgetID]
	if !ok || b.UserID != userID || b.IsDeleted() {
		return nil, apperrors.NewNotFoundError("budget not found")
	}
	return &b, nil
}

func (r *budgetRepository) ListBudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	budgets := []domain.Budget{}
	for _, b := range r.s.budgets {
		if b.UserID == userID && !b.IsDeleted() {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].StartDate.Before(budgets[j].StartDate) })
	return budgets, nil
}

func (r *budgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.budgets[budget.BudgetID] = budget
	return nil
}
