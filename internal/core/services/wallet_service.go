package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// walletService serves wallet reads and the two maintenance writes.
type walletService struct {
	BaseService
	uow   portsrepo.UnitOfWork
	repos portsrepo.RepositoryProvider
}

// NewWalletService creates a wallet service.
func NewWalletService(repos portsrepo.RepositoryProvider, uow portsrepo.UnitOfWork, opts ...Option) portssvc.WalletSvcFacade {
	svc := &walletService{uow: uow, repos: repos}
	svc.apply(opts)
	return svc
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)

func (s *walletService) GetWallet(ctx context.Context, userID, walletID string) (*domain.Wallet, error) {
	wallet, err := s.repos.WalletRepo.FindWalletByID(ctx, userID, walletID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to find wallet", slog.String("wallet_id", walletID))
		return nil, err
	}
	return wallet, nil
}

// ListWallets returns every wallet; archived ones are listed but left out of the total.
func (s *walletService) ListWallets(ctx context.Context, userID string) (*domain.WalletSummary, error) {
	wallets, err := s.repos.WalletRepo.ListWalletsByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list wallets", slog.String("user_id", userID))
		return nil, err
	}

	total := decimal.Zero
	for _, w := range wallets {
		if !w.IsArchived {
			total = total.Add(w.Balance)
		}
	}
	return &domain.WalletSummary{Wallets: wallets, TotalBalance: total}, nil
}

func (s *walletService) SetDefaultWallet(ctx context.Context, userID, walletID string) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		current, err := repos.WalletRepo.FindWalletByID(ctx, userID, walletID)
		if err != nil {
			return err
		}
		if current.IsArchived {
			return apperrors.NewConflictError("an archived wallet cannot be the default wallet")
		}
		if err := repos.WalletRepo.SetDefaultWallet(ctx, userID, walletID, s.now()); err != nil {
			return err
		}
		wallet, err = repos.WalletRepo.FindWalletByID(ctx, userID, walletID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to set default wallet", slog.String("wallet_id", walletID))
		return nil, err
	}

	s.LogInfo(ctx, "Default wallet changed", slog.String("wallet_id", walletID))
	return wallet, nil
}

// RecalculateBalance replays the wallet's active transactions on top of its initial
// balance and stores the result. It is the only direct assignment of a balance.
func (s *walletService) RecalculateBalance(ctx context.Context, userID, walletID string) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		current, err := repos.WalletRepo.FindWalletByID(ctx, userID, walletID)
		if err != nil {
			return err
		}
		txns, err := repos.TransactionRepo.ListTransactionsByWallet(ctx, walletID)
		if err != nil {
			return fmt.Errorf("listing wallet transactions: %w", err)
		}

		replayed := accounting.ReplayBalance(walletID, current.InitialBalance, txns)
		if !replayed.Equal(current.Balance) {
			s.LogWarn(ctx, "Wallet balance drift corrected",
				slog.String("wallet_id", walletID),
				slog.String("stored", current.Balance.String()),
				slog.String("replayed", replayed.String()))
		}
		if err := repos.WalletRepo.OverwriteBalance(ctx, walletID, replayed, userID, s.now()); err != nil {
			return err
		}
		wallet, err = repos.WalletRepo.FindWalletByID(ctx, userID, walletID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to recalculate wallet balance", slog.String("wallet_id", walletID))
		return nil, err
	}
	return wallet, nil
}
