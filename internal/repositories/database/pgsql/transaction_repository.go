package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/finance_tracker/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, user_id, wallet_id, to_wallet_id, category_id, amount, type, date, note,
	reference_type, reference_id, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type transactionRepository struct {
	BaseRepository
}

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepository)(nil)

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID, &t.UserID, &t.WalletID, &t.ToWalletID, &t.CategoryID, &t.Amount, &t.Type, &t.Date, &t.Note,
		&t.ReferenceType, &t.ReferenceID, &t.DeletedAt, &t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	txns := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func scopeClause(scope portsrepo.ReadScope) string {
	if scope == portsrepo.IncludeDeleted {
		return ""
	}
	return " AND deleted_at IS NULL"
}

func (r *transactionRepository) FindTransactionByID(ctx context.Context, userID, transactionID string, scope portsrepo.ReadScope) (*domain.Transaction, error) {
	return r.find(ctx, userID, transactionID, scope, "")
}

func (r *transactionRepository) FindTransactionForUpdate(ctx context.Context, userID, transactionID string, scope portsrepo.ReadScope) (*domain.Transaction, error) {
	return r.find(ctx, userID, transactionID, scope, " FOR UPDATE")
}

func (r *transactionRepository) find(ctx context.Context, userID, transactionID string, scope portsrepo.ReadScope, lock string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 AND user_id = $2` + scopeClause(scope) + lock
	t, err := scanTransaction(r.DB.QueryRow(ctx, query, transactionID, userID))
	if err != nil {
		return nil, mapReadError(err, apperrors.ErrTransactionNotFound, "transaction")
	}
	return t, nil
}

// ListTransactions pages with a keyset on (date, created_at, transaction_id), newest first.
func (r *transactionRepository) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter, after *pagination.Cursor, limit int) ([]domain.Transaction, error) {
	conditions := []string{"user_id = $1", "deleted_at IS NULL"}
	args := []any{userID}
	add := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.WalletID != nil {
		add("(wallet_id = $%[1]d OR to_wallet_id = $%[1]d)", *filter.WalletID)
	}
	if filter.CategoryID != nil {
		add("category_id = $%d", *filter.CategoryID)
	}
	if filter.Type != nil {
		add("type = $%d", string(*filter.Type))
	}
	if filter.From != nil {
		add("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("date <= $%d", *filter.To)
	}
	if after != nil {
		args = append(args, after.Date, after.CreatedAt, after.ID)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(date, created_at, transaction_id) < ($%d, $%d, $%d)", n-2, n-1, n))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY date DESC, created_at DESC, transaction_id DESC LIMIT $%d`,
		transactionColumns, strings.Join(conditions, " AND "), len(args))
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return collectTransactions(rows)
}

func (r *transactionRepository) ListTransactionsByWallet(ctx context.Context, walletID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE (wallet_id = $1 OR to_wallet_id = $1) AND deleted_at IS NULL
		ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("listing wallet transactions: %w", err)
	}
	return collectTransactions(rows)
}

func (r *transactionRepository) ListTransactionsByReference(ctx context.Context, refType domain.ReferenceType, refID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE reference_type = $1 AND reference_id = $2 AND deleted_at IS NULL
		ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, string(refType), refID)
	if err != nil {
		return nil, fmt.Errorf("listing referenced transactions: %w", err)
	}
	return collectTransactions(rows)
}

func (r *transactionRepository) SumExpenses(ctx context.Context, userID, categoryID string, walletID *string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND category_id = $2
		  AND ($3::text IS NULL OR wallet_id = $3)
		  AND date BETWEEN $4 AND $5
		  AND deleted_at IS NULL`
	var sum decimal.Decimal
	if err := r.DB.QueryRow(ctx, query, userID, categoryID, walletID, from, to).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("summing expenses: %w", err)
	}
	return sum, nil
}

func (r *transactionRepository) SaveTransaction(ctx context.Context, t domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.DB.Exec(ctx, query,
		t.TransactionID, t.UserID, t.WalletID, t.ToWalletID, t.CategoryID, t.Amount, string(t.Type), t.Date, t.Note,
		t.ReferenceType, t.ReferenceID, t.DeletedAt, t.CreatedAt, t.CreatedBy, t.LastUpdatedAt, t.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "transaction "+t.TransactionID)
	}
	return nil
}

func (r *transactionRepository) UpdateTransaction(ctx context.Context, t domain.Transaction) error {
	query := `
		UPDATE transactions
		SET wallet_id = $2, to_wallet_id = $3, category_id = $4, amount = $5, type = $6, date = $7, note = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE transaction_id = $1 AND deleted_at IS NULL`
	tag, err := r.DB.Exec(ctx, query,
		t.TransactionID, t.WalletID, t.ToWalletID, t.CategoryID, t.Amount, string(t.Type), t.Date, t.Note,
		t.LastUpdatedAt, t.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "transaction "+t.TransactionID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) MarkTransactionDeleted(ctx context.Context, transactionID, userID string, now time.Time) error {
	query := `
		UPDATE transactions SET deleted_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE transaction_id = $1 AND deleted_at IS NULL`
	tag, err := r.DB.Exec(ctx, query, transactionID, now, userID)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) MarkTransactionRestored(ctx context.Context, transactionID, userID string, now time.Time) error {
	query := `
		UPDATE transactions SET deleted_at = NULL, last_updated_at = $2, last_updated_by = $3
		WHERE transaction_id = $1 AND deleted_at IS NOT NULL`
	tag, err := r.DB.Exec(ctx, query, transactionID, now, userID)
	if err != nil {
		return fmt.Errorf("restoring transaction: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE transaction_id = $1)`, transactionID).Scan(&exists); err != nil {
		return fmt.Errorf("checking transaction: %w", err)
	}
	if exists {
		return apperrors.ErrNotDeleted
	}
	return apperrors.ErrTransactionNotFound
}

const groupTransactionColumns = `transaction_id, group_id, wallet_id, from_wallet_id, to_wallet_id, category_id, amount, type,
	date, note, paid_by, splits, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type groupTransactionRepository struct {
	BaseRepository
}

var _ portsrepo.GroupTransactionRepositoryFacade = (*groupTransactionRepository)(nil)

func scanGroupTransaction(row pgx.Row) (*domain.GroupTransaction, error) {
	var t domain.GroupTransaction
	err := row.Scan(
		&t.TransactionID, &t.GroupID, &t.WalletID, &t.FromWalletID, &t.ToWalletID, &t.CategoryID, &t.Amount, &t.Type,
		&t.Date, &t.Note, &t.PaidBy, &t.Splits, &t.DeletedAt, &t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *groupTransactionRepository) FindGroupTransactionForUpdate(ctx context.Context, groupID, transactionID string) (*domain.GroupTransaction, error) {
	query := `SELECT ` + groupTransactionColumns + ` FROM group_transactions
		WHERE transaction_id = $1 AND group_id = $2 AND deleted_at IS NULL
		FOR UPDATE`
	t, err := scanGroupTransaction(r.DB.QueryRow(ctx, query, transactionID, groupID))
	if err != nil {
		return nil, mapReadError(err, apperrors.ErrTransactionNotFound, "group transaction")
	}
	return t, nil
}

func (r *groupTransactionRepository) ListGroupTransactions(ctx context.Context, groupID string, limit, offset int) ([]domain.GroupTransaction, error) {
	query := `SELECT ` + groupTransactionColumns + ` FROM group_transactions
		WHERE group_id = $1 AND deleted_at IS NULL
		ORDER BY date DESC, transaction_id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing group transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.GroupTransaction{}
	for rows.Next() {
		t, err := scanGroupTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning group transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (r *groupTransactionRepository) SaveGroupTransaction(ctx context.Context, t domain.GroupTransaction) error {
	query := `
		INSERT INTO group_transactions (` + groupTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.DB.Exec(ctx, query,
		t.TransactionID, t.GroupID, t.WalletID, t.FromWalletID, t.ToWalletID, t.CategoryID, t.Amount, string(t.Type),
		t.Date, t.Note, t.PaidBy, splitsParam(t.Splits), t.DeletedAt, t.CreatedAt, t.CreatedBy, t.LastUpdatedAt, t.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "group transaction "+t.TransactionID)
	}
	return nil
}

func (r *groupTransactionRepository) UpdateGroupTransaction(ctx context.Context, t domain.GroupTransaction) error {
	query := `
		UPDATE group_transactions
		SET wallet_id = $2, from_wallet_id = $3, to_wallet_id = $4, category_id = $5, amount = $6, type = $7,
		    date = $8, note = $9, paid_by = $10, splits = $11, last_updated_at = $12, last_updated_by = $13
		WHERE transaction_id = $1 AND deleted_at IS NULL`
	tag, err := r.DB.Exec(ctx, query,
		t.TransactionID, t.WalletID, t.FromWalletID, t.ToWalletID, t.CategoryID, t.Amount, string(t.Type),
		t.Date, t.Note, t.PaidBy, splitsParam(t.Splits), t.LastUpdatedAt, t.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "group transaction "+t.TransactionID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

func (r *groupTransactionRepository) MarkGroupTransactionDeleted(ctx context.Context, transactionID, userID string, now time.Time) error {
	query := `
		UPDATE group_transactions SET deleted_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE transaction_id = $1 AND deleted_at IS NULL`
	tag, err := r.DB.Exec(ctx, query, transactionID, now, userID)
	if err != nil {
		return fmt.Errorf("deleting group transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// splitsParam stores an empty split list as an empty JSON array rather than NULL.
func splitsParam(splits []domain.Split) []domain.Split {
	if splits == nil {
		return []domain.Split{}
	}
	return splits
}
