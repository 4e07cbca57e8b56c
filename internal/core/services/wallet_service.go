package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/renohub/reno_backend/internal/apperrors"
	"github.com/renohub/reno_backend/internal/core/domain"
	portsrepo "github.com/renohub/reno_backend/internal/core/ports/repositories"
	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/dto"
	"github.com/renohub/reno_backend/internal/middleware"
)

var (
	ErrNonPositiveAmount = errors.New("wallet movement amount must be positive")
	ErrFrozenExceeded    = errors.New("unfreeze amount exceeds frozen money")
)

const (
	defaultTxnPageSize = 20
	maxTxnPageSize     = 100
)

// walletService owns per-craftsman balances and the append-only ledger.
// Every movement locks the wallet row before the read-modify-write so
// concurrent settlements against the same craftsman serialize.
type walletService struct {
	walletRepo portsrepo.WalletRepositoryWithTx
}

// NewWalletService creates a new WalletService.
func NewWalletService(walletRepo portsrepo.WalletRepositoryWithTx) portssvc.WalletSvcFacade {
	return &walletService{walletRepo: walletRepo}
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)

// GetWallet returns the craftsman's wallet. Wallets are created lazily, so a
// craftsman without money events gets a zero-balance view rather than NotFound.
func (s *walletService) GetWallet(ctx context.Context, craftsmanID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindWalletByCraftsmanID(ctx, craftsmanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.Wallet{
				CraftsmanID: craftsmanID,
				Balance:     decimal.Zero,
				FrozenMoney: decimal.Zero,
			}, nil
		}
		return nil, err
	}
	return wallet, nil
}

func (s *walletService) ListTransactions(ctx context.Context, craftsmanID string, params dto.ListWalletTransactionsParams) (*dto.ListWalletTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultTxnPageSize
	}
	if limit > maxTxnPageSize {
		limit = maxTxnPageSize
	}

	txns, nextToken, err := s.walletRepo.ListWalletTransactions(ctx, craftsmanID, limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	return &dto.ListWalletTransactionsResponse{
		Transactions: dto.ToWalletTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

func (s *walletService) Credit(ctx context.Context, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.CreditInTx(ctx, tx, craftsmanID, amount, reason, orderID)
	})
}

func (s *walletService) Debit(ctx context.Context, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.debitInTx(ctx, tx, craftsmanID, amount, reason, orderID)
	})
}

func (s *walletService) Freeze(ctx context.Context, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.FreezeInTx(ctx, tx, craftsmanID, amount, reason, orderID)
	})
}

func (s *walletService) Unfreeze(ctx context.Context, craftsmanID string, amount decimal.Decimal, toBalance bool, reason string, orderID *string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.unfreezeInTx(ctx, tx, craftsmanID, amount, toBalance, reason, orderID)
	})
}

// CreditInTx adds amount to the spendable balance inside the caller's
// transaction and appends the ledger row.
func (s *walletService) CreditInTx(ctx context.Context, tx pgx.Tx, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount.String())
	}

	now := time.Now().UTC()
	wallet, err := s.walletRepo.FindOrCreateWalletForUpdate(ctx, tx, craftsmanID, craftsmanID, now)
	if err != nil {
		return err
	}

	newBalance := wallet.Balance.Add(amount)
	if err := s.walletRepo.UpdateWalletBalancesInTx(ctx, tx, wallet.WalletID, newBalance, wallet.FrozenMoney, craftsmanID, now); err != nil {
		return err
	}

	return s.appendLedgerRow(ctx, tx, wallet, amount, domain.WalletTxnIncome, reason, orderID, now)
}

func (s *walletService) debitInTx(ctx context.Context, tx pgx.Tx, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount.String())
	}

	now := time.Now().UTC()
	wallet, err := s.walletRepo.FindOrCreateWalletForUpdate(ctx, tx, craftsmanID, craftsmanID, now)
	if err != nil {
		return err
	}

	if wallet.Balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, debit %s", apperrors.ErrInsufficientBalance, wallet.Balance.String(), amount.String())
	}

	newBalance := wallet.Balance.Sub(amount)
	if err := s.walletRepo.UpdateWalletBalancesInTx(ctx, tx, wallet.WalletID, newBalance, wallet.FrozenMoney, craftsmanID, now); err != nil {
		return err
	}

	return s.appendLedgerRow(ctx, tx, wallet, amount, domain.WalletTxnExpense, reason, orderID, now)
}

// FreezeInTx moves amount from the spendable balance into escrow inside the
// caller's transaction.
func (s *walletService) FreezeInTx(ctx context.Context, tx pgx.Tx, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount.String())
	}

	now := time.Now().UTC()
	wallet, err := s.walletRepo.FindOrCreateWalletForUpdate(ctx, tx, craftsmanID, craftsmanID, now)
	if err != nil {
		return err
	}

	if wallet.Balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, freeze %s", apperrors.ErrInsufficientBalance, wallet.Balance.String(), amount.String())
	}

	newBalance := wallet.Balance.Sub(amount)
	newFrozen := wallet.FrozenMoney.Add(amount)
	if err := s.walletRepo.UpdateWalletBalancesInTx(ctx, tx, wallet.WalletID, newBalance, newFrozen, craftsmanID, now); err != nil {
		return err
	}

	return s.appendLedgerRow(ctx, tx, wallet, amount, domain.WalletTxnExpense, reason, orderID, now)
}

func (s *walletService) unfreezeInTx(ctx context.Context, tx pgx.Tx, craftsmanID string, amount decimal.Decimal, toBalance bool, reason string, orderID *string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount.String())
	}

	now := time.Now().UTC()
	wallet, err := s.walletRepo.FindOrCreateWalletForUpdate(ctx, tx, craftsmanID, craftsmanID, now)
	if err != nil {
		return err
	}

	if wallet.FrozenMoney.LessThan(amount) {
		return fmt.Errorf("%w: frozen %s, unfreeze %s", ErrFrozenExceeded, wallet.FrozenMoney.String(), amount.String())
	}

	newFrozen := wallet.FrozenMoney.Sub(amount)
	newBalance := wallet.Balance
	txnType := domain.WalletTxnExpense
	if toBalance {
		newBalance = newBalance.Add(amount)
		txnType = domain.WalletTxnIncome
	}
	if err := s.walletRepo.UpdateWalletBalancesInTx(ctx, tx, wallet.WalletID, newBalance, newFrozen, craftsmanID, now); err != nil {
		return err
	}

	return s.appendLedgerRow(ctx, tx, wallet, amount, txnType, reason, orderID, now)
}

func (s *walletService) appendLedgerRow(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet, amount decimal.Decimal, txnType domain.WalletTxnType, reason string, orderID *string, now time.Time) error {
	txn := domain.WalletTransaction{
		TransactionID: uuid.NewString(),
		WalletID:      wallet.WalletID,
		CraftsmanID:   wallet.CraftsmanID,
		Amount:        amount,
		TxnType:       txnType,
		Reason:        reason,
		OrderID:       orderID,
		CreatedAt:     now,
	}
	if err := s.walletRepo.InsertWalletTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Wallet movement applied",
		slog.String("craftsman_id", wallet.CraftsmanID),
		slog.String("amount", amount.String()),
		slog.String("txn_type", string(txnType)),
		slog.String("reason", reason),
	)
	return nil
}

func (s *walletService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.walletRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.walletRepo.Rollback(ctx, tx)

	if err := fn(tx); err != nil {
		return err
	}
	return s.walletRepo.Commit(ctx, tx)
}
