package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/utils/accounting"
	"github.com/SscSPs/finance_tracker/internal/utils/pagination"
	"github.com/google/uuid"
)

// groupTransactionService is the group twin of the transaction engine. The membership
// gate runs before a unit begins; the unit itself follows the personal engine.
type groupTransactionService struct {
	BaseService
	uow        portsrepo.UnitOfWork
	repos      portsrepo.RepositoryProvider
	ledger     WalletLedger
	categories CategoryRegistry
}

// NewGroupTransactionService creates the group transaction engine. A group authorizer must
// be supplied through WithGroupAuthorizer, otherwise every call is refused.
func NewGroupTransactionService(repos portsrepo.RepositoryProvider, uow portsrepo.UnitOfWork, opts ...Option) portssvc.GroupTransactionSvcFacade {
	svc := &groupTransactionService{uow: uow, repos: repos}
	svc.apply(opts)
	return svc
}

var _ portssvc.GroupTransactionSvcFacade = (*groupTransactionService)(nil)

func (s *groupTransactionService) CreateGroupTransaction(ctx context.Context, userID, groupID string, req dto.CreateGroupTransactionRequest) (*domain.GroupTransaction, error) {
	if err := s.AuthorizeGroup(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	now := s.now()
	txn := domain.GroupTransaction{
		TransactionID: uuid.NewString(),
		GroupID:       groupID,
		WalletID:      req.WalletID,
		FromWalletID:  req.FromWalletID,
		ToWalletID:    req.ToWalletID,
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Type:          req.Type,
		Date:          now,
		Note:          req.Note,
		PaidBy:        req.PaidBy,
		Splits:        dto.ToSplits(req.Splits),
		AuditFields:   domain.NewAuditFields(userID, now),
	}
	if req.Date != nil {
		txn.Date = *req.Date
	}
	if txn.PaidBy == "" {
		txn.PaidBy = userID
	}

	s.warnIfDegraded(ctx, groupID)
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := txn.Validate(); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, repos, txn, nil); err != nil {
			return err
		}
		if err := repos.GroupTransactionRepo.SaveGroupTransaction(ctx, txn); err != nil {
			return fmt.Errorf("saving group transaction: %w", err)
		}
		if err := s.ledger.Apply(ctx, repos.GroupWalletRepo, accounting.GroupEffects(txn), userID, now); err != nil {
			return fmt.Errorf("applying group transaction effect: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create group transaction",
			slog.String("group_id", groupID),
			slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Group transaction created successfully",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("group_id", groupID))
	return &txn, nil
}

func (s *groupTransactionService) UpdateGroupTransaction(ctx context.Context, userID, groupID, transactionID string, req dto.UpdateGroupTransactionRequest) (*domain.GroupTransaction, error) {
	if err := s.AuthorizeGroup(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	s.warnIfDegraded(ctx, groupID)
	var updated domain.GroupTransaction
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		old, err := repos.GroupTransactionRepo.FindGroupTransactionForUpdate(ctx, groupID, transactionID)
		if err != nil {
			return err
		}

		now := s.now()
		updated = applyGroupTransactionUpdate(*old, req)
		updated.Touch(userID, now)

		if err := updated.Validate(); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, repos, updated, old); err != nil {
			return err
		}
		if err := repos.GroupTransactionRepo.UpdateGroupTransaction(ctx, updated); err != nil {
			return fmt.Errorf("updating group transaction: %w", err)
		}
		if err := s.ledger.ApplyNet(ctx, repos.GroupWalletRepo, accounting.GroupEffects(*old), accounting.GroupEffects(updated), userID, now); err != nil {
			return fmt.Errorf("moving group transaction effect: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update group transaction",
			slog.String("group_id", groupID),
			slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Group transaction updated successfully", slog.String("transaction_id", transactionID))
	return &updated, nil
}

// applyGroupTransactionUpdate copies the requested changes onto txn, clearing the wallet
// fields the resulting type does not use unless the request set them.
func applyGroupTransactionUpdate(txn domain.GroupTransaction, req dto.UpdateGroupTransactionRequest) domain.GroupTransaction {
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
	if req.PaidBy != nil {
		txn.PaidBy = *req.PaidBy
	}
	if req.Splits != nil {
		txn.Splits = dto.ToSplits(*req.Splits)
	}

	if req.WalletID != nil {
		txn.WalletID = req.WalletID
	} else if txn.Type == domain.Transfer {
		txn.WalletID = nil
	}
	if req.FromWalletID != nil {
		txn.FromWalletID = req.FromWalletID
	} else if txn.Type != domain.Transfer {
		txn.FromWalletID = nil
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

func (s *groupTransactionService) DeleteGroupTransaction(ctx context.Context, userID, groupID, transactionID string) error {
	if err := s.AuthorizeGroup(ctx, userID, groupID, domain.RoleMember); err != nil {
		return err
	}

	s.warnIfDegraded(ctx, groupID)
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		old, err := repos.GroupTransactionRepo.FindGroupTransactionForUpdate(ctx, groupID, transactionID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := repos.GroupTransactionRepo.MarkGroupTransactionDeleted(ctx, transactionID, userID, now); err != nil {
			return fmt.Errorf("marking group transaction deleted: %w", err)
		}
		if err := s.ledger.Revert(ctx, repos.GroupWalletRepo, accounting.GroupEffects(*old), userID, now); err != nil {
			return fmt.Errorf("reverting group transaction effect: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete group transaction",
			slog.String("group_id", groupID),
			slog.String("transaction_id", transactionID))
		return err
	}

	s.LogInfo(ctx, "Group transaction deleted successfully", slog.String("transaction_id", transactionID))
	return nil
}

func (s *groupTransactionService) ListGroupTransactions(ctx context.Context, userID, groupID string, params dto.ListGroupTransactionsParams) ([]domain.GroupTransaction, error) {
	if err := s.AuthorizeGroup(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	txns, err := s.repos.GroupTransactionRepo.ListGroupTransactions(ctx, groupID, pagination.ClampLimit(params.Limit), params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list group transactions", slog.String("group_id", groupID))
		return nil, err
	}
	return txns, nil
}

func (s *groupTransactionService) DisableGroupWallet(ctx context.Context, userID, groupID, walletID string) error {
	if err := s.AuthorizeGroup(ctx, userID, groupID, domain.RoleAdmin); err != nil {
		return err
	}

	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		return repos.GroupWalletRepo.DisableGroupWallet(ctx, groupID, walletID, userID, s.now())
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to disable group wallet",
			slog.String("group_id", groupID),
			slog.String("wallet_id", walletID))
		return err
	}

	s.LogInfo(ctx, "Group wallet disabled", slog.String("wallet_id", walletID))
	return nil
}

// checkReferences verifies wallets, category and members against the group. A disabled
// wallet cannot receive new effects; it may still be touched if old already did.
func (s *groupTransactionService) checkReferences(ctx context.Context, repos portsrepo.RepositoryProvider, txn domain.GroupTransaction, old *domain.GroupTransaction) error {
	previous := map[string]bool{}
	if old != nil {
		for _, id := range old.WalletIDs() {
			previous[id] = true
		}
	}

	for _, walletID := range txn.WalletIDs() {
		wallet, err := repos.GroupWalletRepo.FindGroupWalletByID(ctx, txn.GroupID, walletID)
		if err != nil {
			return err
		}
		if wallet.IsDisabled && !previous[walletID] {
			return apperrors.NewConflictError(fmt.Sprintf("group wallet %s is disabled", walletID))
		}
	}

	if txn.CategoryID != nil {
		if _, err := s.categories.AssertCategory(ctx, repos.CategoryRepo, txn.GroupID, *txn.CategoryID, txn.Type); err != nil {
			return err
		}
	}

	if err := s.checkMember(ctx, repos, txn.GroupID, txn.PaidBy, "paidBy"); err != nil {
		return err
	}
	for _, split := range txn.Splits {
		if err := s.checkMember(ctx, repos, txn.GroupID, split.UserID, "split"); err != nil {
			return err
		}
	}
	return nil
}

func (s *groupTransactionService) checkMember(ctx context.Context, repos portsrepo.RepositoryProvider, groupID, userID, field string) error {
	if _, err := repos.GroupMemberRepo.FindMembership(ctx, groupID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError(fmt.Sprintf("%s user %s is not a group member", field, userID))
		}
		return err
	}
	return nil
}

func (s *groupTransactionService) warnIfDegraded(ctx context.Context, groupID string) {
	if !s.uow.Transactional() {
		s.LogWarn(ctx, "Storage has no multi-row transactions, group unit runs with compensating reverts",
			slog.String("group_id", groupID))
	}
}
