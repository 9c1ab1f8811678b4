package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

const categoryColumns = `category_id, owner_id, name, type, parent_id,
	deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type categoryRepository struct {
	BaseRepository
}

var _ portsrepo.CategoryRepositoryFacade = (*categoryRepository)(nil)

func (r *categoryRepository) FindCategoryByID(ctx context.Context, ownerID, categoryID string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1 AND owner_id = $2 AND deleted_at IS NULL`
	var c domain.Category
	err := r.DB.QueryRow(ctx, query, categoryID, ownerID).Scan(
		&c.CategoryID, &c.OwnerID, &c.Name, &c.Type, &c.ParentID,
		&c.DeletedAt, &c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapReadError(err, apperrors.ErrCategoryNotFound, "category")
	}
	return &c, nil
}

func (r *categoryRepository) SaveCategory(ctx context.Context, c domain.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.Exec(ctx, query,
		c.CategoryID, c.OwnerID, c.Name, c.Type, c.ParentID,
		c.DeletedAt, c.CreatedAt, c.CreatedBy, c.LastUpdatedAt, c.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "category "+c.CategoryID)
	}
	return nil
}

func (r *categoryRepository) UpdateCategoryParent(ctx context.Context, c domain.Category) error {
	query := `
		UPDATE categories SET parent_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE category_id = $1 AND deleted_at IS NULL`
	tag, err := r.DB.Exec(ctx, query, c.CategoryID, c.ParentID, c.LastUpdatedAt, c.LastUpdatedBy)
	if err != nil {
		return mapWriteError(err, "category "+c.CategoryID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

const budgetColumns = `budget_id, user_id, name, category_id, wallet_id, limit_amount, start_date, end_date,
	deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type budgetRepository struct {
	BaseRepository
}

var _ portsrepo.BudgetRepositoryFacade = (*budgetRepository)(nil)

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(
		&b.BudgetID, &b.UserID, &b.Name, &b.CategoryID, &b.WalletID, &b.LimitAmount, &b.StartDate, &b.EndDate,
		&b.DeletedAt, &b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *budgetRepository) FindBudgetByID(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1 AND user_id = $2 AND deleted_at IS NULL`
	b, err := scanBudget(r.DB.QueryRow(ctx, query, budgetID, userID))
	if err != nil {
		return nil, mapReadError(err, apperrors.NewNotFoundError("budget not found"), "budget")
	}
	return b, nil
}

func (r *budgetRepository) ListBudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 AND deleted_at IS NULL ORDER BY start_date DESC, budget_id`
	rows, err := r.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (r *budgetRepository) SaveBudget(ctx context.Context, b domain.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.DB.Exec(ctx, query,
		b.BudgetID, b.UserID, b.Name, b.CategoryID, b.WalletID, b.LimitAmount, b.StartDate, b.EndDate,
		b.DeletedAt, b.CreatedAt, b.CreatedBy, b.LastUpdatedAt, b.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "budget "+b.BudgetID)
	}
	return nil
}
