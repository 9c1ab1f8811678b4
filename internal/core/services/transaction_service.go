package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/utils/accounting"
	"github.com/SscSPs/finance_tracker/internal/utils/pagination"
	"github.com/google/uuid"
)

// transactionService is the personal transaction engine. Every mutation is one unit:
// the transaction row and its wallet effect commit or roll back together.
type transactionService struct {
	BaseService
	uow        portsrepo.UnitOfWork
	repos      portsrepo.RepositoryProvider
	ledger     WalletLedger
	categories CategoryRegistry
}

// NewTransactionService creates the personal transaction engine. repos serves reads
// outside a unit; writes always go through uow.
func NewTransactionService(repos portsrepo.RepositoryProvider, uow portsrepo.UnitOfWork, opts ...Option) portssvc.TransactionSvcFacade {
	svc := &transactionService{uow: uow, repos: repos}
	svc.apply(opts)
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionDetails, error) {
	txn, err := s.repos.TransactionRepo.FindTransactionByID(ctx, userID, transactionID, portsrepo.ExcludeDeleted)
	if err != nil {
		s.logFailure(ctx, err, "Failed to find transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return s.loadDetails(ctx, s.repos, *txn)
}

func (s *transactionService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := pagination.ClampLimit(params.Limit)

	var after *pagination.Cursor
	if params.NextToken != "" {
		cursor, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid nextToken: %v", err))
		}
		after = &cursor
	}

	filter := domain.TransactionFilter{
		WalletID:   params.WalletID,
		CategoryID: params.CategoryID,
		From:       params.From,
	}
	if params.Type != nil {
		txType := domain.TransactionType(*params.Type)
		if !txType.IsValid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid transaction type %q", *params.Type))
		}
		filter.Type = &txType
	}
	if params.To != nil {
		// "to" is a calendar day and includes all of it
		endOfDay := params.To.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.To = &endOfDay
	}

	txns, err := s.repos.TransactionRepo.ListTransactions(ctx, userID, filter, after, limit+1)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("user_id", userID))
		return nil, err
	}

	var nextToken *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.TransactionID})
		nextToken = &token
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

func (s *transactionService) CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.TransactionDetails, error) {
	txn := domain.Transaction{
		WalletID:   req.WalletID,
		ToWalletID: req.ToWalletID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Type:       req.Type,
		Note:       req.Note,
	}
	if req.Date != nil {
		txn.Date = *req.Date
	}

	var details *domain.TransactionDetails
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		details, err = s.CreateInUnit(ctx, repos, userID, txn)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create transaction",
			slog.String("user_id", userID),
			slog.String("wallet_id", req.WalletID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction created successfully",
		slog.String("transaction_id", details.TransactionID),
		slog.String("type", string(details.Type)))
	return details, nil
}

// CreateInUnit validates txn, writes it and applies its effect using repos, which must be
// bound to the caller's unit. Missing id, date and audit fields are filled in.
func (s *transactionService) CreateInUnit(ctx context.Context, repos portsrepo.RepositoryProvider, userID string, txn domain.Transaction) (*domain.TransactionDetails, error) {
	now := s.now()
	txn.UserID = userID
	if txn.TransactionID == "" {
		txn.TransactionID = uuid.NewString()
	}
	if txn.Date.IsZero() {
		txn.Date = now
	}
	txn.DeletedAt = nil
	txn.AuditFields = domain.NewAuditFields(userID, now)

	if err := txn.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, repos, txn); err != nil {
		return nil, err
	}
	if err := repos.TransactionRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("saving transaction: %w", err)
	}
	if err := s.ledger.Apply(ctx, repos.WalletRepo, accounting.Effects(txn), userID, now); err != nil {
		return nil, fmt.Errorf("applying transaction effect: %w", err)
	}
	return s.loadDetails(ctx, repos, txn)
}

func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, req dto.UpdateTransactionRequest) (*domain.TransactionDetails, error) {
	var details *domain.TransactionDetails
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		old, err := repos.TransactionRepo.FindTransactionForUpdate(ctx, userID, transactionID, portsrepo.ExcludeDeleted)
		if err != nil {
			return err
		}

		now := s.now()
		updated := applyTransactionUpdate(*old, req)
		updated.Touch(userID, now)

		// the goal's direction and wallet come from the goal itself
		if old.ReferencesGoal() && (updated.Type != old.Type || updated.WalletID != old.WalletID) {
			return apperrors.NewConflictError("a saving goal transaction can only change amount, date, note and category")
		}

		// validate the new state before anything is written
		if err := updated.Validate(); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, repos, updated); err != nil {
			return err
		}

		if err := repos.TransactionRepo.UpdateTransaction(ctx, updated); err != nil {
			return fmt.Errorf("updating transaction: %w", err)
		}
		if err := s.ledger.ApplyNet(ctx, repos.WalletRepo, accounting.Effects(*old), accounting.Effects(updated), userID, now); err != nil {
			return fmt.Errorf("moving transaction effect: %w", err)
		}
		if err := s.syncGoal(ctx, repos, updated, userID, now); err != nil {
			return err
		}

		details, err = s.loadDetails(ctx, repos, updated)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction updated successfully", slog.String("transaction_id", transactionID))
	return details, nil
}

// applyTransactionUpdate copies the requested changes onto txn. When the resulting type
// cannot carry a destination wallet or category those fields are cleared, unless the
// request set them explicitly (which then fails validation).
func applyTransactionUpdate(txn domain.Transaction, req dto.UpdateTransactionRequest) domain.Transaction {
	if req.WalletID != nil {
		txn.WalletID = *req.WalletID
	}
	if req.Type != nil {
		txn.Type = *req.Type
	}
	if req.Amount != nil {
		txn.Amount = *req.Amount
	}
	if req.Date != nil {
		txn.Date = *req.Date
	}
	if req.Note != nil {
		txn.Note = *req.Note
	}

	if req.ToWalletID != nil {
		txn.ToWalletID = req.ToWalletID
	} else if txn.Type != domain.Transfer {
		txn.ToWalletID = nil
	}
	if req.CategoryID != nil {
		txn.CategoryID = req.CategoryID
	} else if !txn.Type.AllowsCategory() {
		txn.CategoryID = nil
	}
	return txn
}

func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		old, err := repos.TransactionRepo.FindTransactionForUpdate(ctx, userID, transactionID, portsrepo.ExcludeDeleted)
		if err != nil {
			return err
		}

		now := s.now()
		if err := repos.TransactionRepo.MarkTransactionDeleted(ctx, transactionID, userID, now); err != nil {
			return fmt.Errorf("marking transaction deleted: %w", err)
		}
		if err := s.ledger.Revert(ctx, repos.WalletRepo, accounting.Effects(*old), userID, now); err != nil {
			return fmt.Errorf("reverting transaction effect: %w", err)
		}
		return s.syncGoal(ctx, repos, *old, userID, now)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return err
	}

	s.LogInfo(ctx, "Transaction deleted successfully", slog.String("transaction_id", transactionID))
	return nil
}

func (s *transactionService) RestoreTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionDetails, error) {
	var details *domain.TransactionDetails
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		deleted, err := repos.TransactionRepo.FindTransactionForUpdate(ctx, userID, transactionID, portsrepo.IncludeDeleted)
		if err != nil {
			return err
		}
		if !deleted.IsDeleted() {
			return apperrors.ErrNotDeleted
		}

		now := s.now()
		restored := *deleted
		restored.DeletedAt = nil
		restored.Touch(userID, now)

		if err := repos.TransactionRepo.MarkTransactionRestored(ctx, transactionID, userID, now); err != nil {
			return fmt.Errorf("restoring transaction: %w", err)
		}
		if err := s.ledger.Apply(ctx, repos.WalletRepo, accounting.Effects(restored), userID, now); err != nil {
			return fmt.Errorf("reapplying transaction effect: %w", err)
		}
		if err := s.syncGoal(ctx, repos, restored, userID, now); err != nil {
			return err
		}

		details, err = s.loadDetails(ctx, repos, restored)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to restore transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction restored successfully", slog.String("transaction_id", transactionID))
	return details, nil
}

// checkReferences verifies that the wallets belong to the transaction's user and that the
// category exists and points the right way.
func (s *transactionService) checkReferences(ctx context.Context, repos portsrepo.RepositoryProvider, txn domain.Transaction) error {
	if _, err := repos.WalletRepo.FindWalletByID(ctx, txn.UserID, txn.WalletID); err != nil {
		return err
	}
	if txn.Type == domain.Transfer {
		if _, err := repos.WalletRepo.FindWalletByID(ctx, txn.UserID, *txn.ToWalletID); err != nil {
			return fmt.Errorf("destination: %w", err)
		}
	}
	if txn.CategoryID != nil {
		if _, err := s.categories.AssertCategory(ctx, repos.CategoryRepo, txn.UserID, *txn.CategoryID, txn.Type); err != nil {
			return err
		}
	}
	return nil
}

// syncGoal re-derives the progress of the saving goal txn was made for, if any.
func (s *transactionService) syncGoal(ctx context.Context, repos portsrepo.RepositoryProvider, txn domain.Transaction, userID string, now time.Time) error {
	if !txn.ReferencesGoal() {
		return nil
	}
	if _, err := repos.SavingGoalRepo.SyncProgress(ctx, *txn.ReferenceID, userID, now); err != nil {
		return fmt.Errorf("syncing saving goal progress: %w", err)
	}
	return nil
}

// loadDetails reads the wallets and category txn references. References that no longer
// exist are left empty rather than failing the read.
func (s *transactionService) loadDetails(ctx context.Context, repos portsrepo.RepositoryProvider, txn domain.Transaction) (*domain.TransactionDetails, error) {
	details := &domain.TransactionDetails{Transaction: txn}

	wallet, err := repos.WalletRepo.FindWalletByID(ctx, txn.UserID, txn.WalletID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	details.Wallet = wallet

	if txn.ToWalletID != nil {
		toWallet, err := repos.WalletRepo.FindWalletByID(ctx, txn.UserID, *txn.ToWalletID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		details.ToWallet = toWallet
	}

	if txn.CategoryID != nil {
		category, err := repos.CategoryRepo.FindCategoryByID(ctx, txn.UserID, *txn.CategoryID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		details.Category = category
	}
	return details, nil
}
