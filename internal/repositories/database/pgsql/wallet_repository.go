package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/finance_tracker/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const walletColumns = `wallet_id, user_id, name, currency_code, initial_balance, balance, is_default, is_archived,
	deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type walletRepository struct {
	BaseRepository
}

var _ portsrepo.WalletRepositoryFacade = (*walletRepository)(nil)

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.WalletID, &w.UserID, &w.Name, &w.CurrencyCode, &w.InitialBalance, &w.Balance, &w.IsDefault, &w.IsArchived,
		&w.DeletedAt, &w.CreatedAt, &w.CreatedBy, &w.LastUpdatedAt, &w.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepository) FindWalletByID(ctx context.Context, userID, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1 AND user_id = $2 AND deleted_at IS NULL`
	w, err := scanWallet(r.DB.QueryRow(ctx, query, walletID, userID))
	if err != nil {
		return nil, mapReadError(err, apperrors.ErrWalletNotFound, "wallet")
	}
	return w, nil
}

func (r *walletRepository) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wallets: %w", err)
	}
	defer rows.Close()

	wallets := []domain.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning wallet: %w", err)
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}

func (r *walletRepository) SaveWallet(ctx context.Context, w domain.Wallet) error {
	query := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.DB.Exec(ctx, query,
		w.WalletID, w.UserID, w.Name, w.CurrencyCode, w.InitialBalance, w.Balance, w.IsDefault, w.IsArchived,
		w.DeletedAt, w.CreatedAt, w.CreatedBy, w.LastUpdatedAt, w.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "wallet "+w.WalletID)
	}
	return nil
}

// SetDefaultWallet flips is_default on the previous default and the target in one statement.
// The one-default-per-user exclusion constraint is deferred, so the swap never trips it.
func (r *walletRepository) SetDefaultWallet(ctx context.Context, userID, walletID string, now time.Time) error {
	query := `
		UPDATE wallets
		SET is_default = (wallet_id = $2), last_updated_at = $3, last_updated_by = $1
		WHERE user_id = $1 AND deleted_at IS NULL
		  AND (is_default OR wallet_id = $2)
		  AND EXISTS (
		      SELECT 1 FROM wallets t
		      WHERE t.wallet_id = $2 AND t.user_id = $1 AND t.deleted_at IS NULL AND NOT t.is_archived
		  )`
	tag, err := r.DB.Exec(ctx, query, userID, walletID, now)
	if err != nil {
		return fmt.Errorf("setting default wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) OverwriteBalance(ctx context.Context, walletID string, balance decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE wallets SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE wallet_id = $1 AND deleted_at IS NULL`
	tag, err := r.DB.Exec(ctx, query, walletID, balance, now, userID)
	if err != nil {
		return fmt.Errorf("overwriting wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}

// ApplyDeltas sends one relative increment per wallet, in wallet id order so concurrent
// units lock rows in the same sequence. It must run inside a unit: a missing wallet
// fails the call but does not undo the increments already sent.
func (r *walletRepository) ApplyDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE wallets SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE wallet_id = $1 AND deleted_at IS NULL`
	return applyDeltas(ctx, r.DB, query, deltas, userID, now)
}

func applyDeltas(ctx context.Context, db DBTX, query string, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	ids := accounting.SortedWalletIDs(deltas)
	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(query, id, deltas[id], now, userID)
	}

	results := db.SendBatch(ctx, batch)
	defer results.Close()
	for _, id := range ids {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("updating balance of wallet %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s not found during balance update", apperrors.ErrWalletNotFound, id)
		}
	}
	return nil
}

const groupWalletColumns = `wallet_id, group_id, name, currency_code, initial_balance, balance, is_disabled,
	deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type groupWalletRepository struct {
	BaseRepository
}

var _ portsrepo.GroupWalletRepositoryFacade = (*groupWalletRepository)(nil)

func (r *groupWalletRepository) FindGroupWalletByID(ctx context.Context, groupID, walletID string) (*domain.GroupWallet, error) {
	query := `SELECT ` + groupWalletColumns + ` FROM group_wallets WHERE wallet_id = $1 AND group_id = $2 AND deleted_at IS NULL`
	var w domain.GroupWallet
	err := r.DB.QueryRow(ctx, query, walletID, groupID).Scan(
		&w.WalletID, &w.GroupID, &w.Name, &w.CurrencyCode, &w.InitialBalance, &w.Balance, &w.IsDisabled,
		&w.DeletedAt, &w.CreatedAt, &w.CreatedBy, &w.LastUpdatedAt, &w.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapReadError(err, apperrors.ErrWalletNotFound, "group wallet")
	}
	return &w, nil
}

func (r *groupWalletRepository) SaveGroupWallet(ctx context.Context, w domain.GroupWallet) error {
	query := `
		INSERT INTO group_wallets (` + groupWalletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.DB.Exec(ctx, query,
		w.WalletID, w.GroupID, w.Name, w.CurrencyCode, w.InitialBalance, w.Balance, w.IsDisabled,
		w.DeletedAt, w.CreatedAt, w.CreatedBy, w.LastUpdatedAt, w.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "group wallet "+w.WalletID)
	}
	return nil
}

func (r *groupWalletRepository) DisableGroupWallet(ctx context.Context, groupID, walletID, userID string, now time.Time) error {
	query := `
		UPDATE group_wallets SET is_disabled = TRUE, last_updated_at = $3, last_updated_by = $4
		WHERE wallet_id = $1 AND group_id = $2 AND deleted_at IS NULL`
	tag, err := r.DB.Exec(ctx, query, walletID, groupID, now, userID)
	if err != nil {
		return fmt.Errorf("disabling group wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}

func (r *groupWalletRepository) ApplyDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE group_wallets SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE wallet_id = $1 AND deleted_at IS NULL`
	return applyDeltas(ctx, r.DB, query, deltas, userID, now)
}

type membershipRepository struct {
	BaseRepository
}

var _ portsrepo.GroupMembershipReader = (*membershipRepository)(nil)

func (r *membershipRepository) FindMembership(ctx context.Context, groupID, userID string) (*domain.GroupMember, error) {
	query := `SELECT group_id, user_id, role, joined_at FROM group_members WHERE group_id = $1 AND user_id = $2`
	var m domain.GroupMember
	err := r.DB.QueryRow(ctx, query, groupID, userID).Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, mapReadError(err, apperrors.NewNotFoundError("group membership not found"), "group membership")
	}
	return &m, nil
}
