package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/renohub/reno_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// WalletReaderSvc defines read operations over wallets.
type WalletReaderSvc interface {
	// GetWallet retrieves a craftsman's wallet; a craftsman without money
	// events yet gets a zero-balance view.
	GetWallet(ctx context.Context, craftsmanID string) (*domain.Wallet, error)

	// ListTransactions retrieves the append-only ledger history, newest first.
	ListTransactions(ctx context.Context, craftsmanID string, params dto.ListWalletTransactionsParams) (*dto.ListWalletTransactionsResponse, error)
}

// WalletLedgerSvc defines the atomic money movements. Each standalone call
// runs in its own storage transaction, appends exactly one ledger row and
// never produces a negative balance or frozen amount.
type WalletLedgerSvc interface {
	// Credit adds amount to the spendable balance.
	Credit(ctx context.Context, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error

	// Debit removes amount from the spendable balance; fails with
	// ErrInsufficientBalance when it would go negative.
	Debit(ctx context.Context, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error

	// Freeze moves amount from the spendable balance into escrow; fails with
	// ErrInsufficientBalance when the balance is short.
	Freeze(ctx context.Context, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error

	// Unfreeze releases amount from escrow, either back to the balance or out
	// of the wallet entirely.
	Unfreeze(ctx context.Context, craftsmanID string, amount decimal.Decimal, toBalance bool, reason string, orderID *string) error
}

// WalletTxScopedSvc exposes the same movements inside a caller-owned
// transaction, so order settlement can move money atomically with item flags
// and status flips.
type WalletTxScopedSvc interface {
	CreditInTx(ctx context.Context, tx pgx.Tx, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error
	FreezeInTx(ctx context.Context, tx pgx.Tx, craftsmanID string, amount decimal.Decimal, reason string, orderID *string) error
}

// WalletSvcFacade combines all wallet service interfaces.
type WalletSvcFacade interface {
	WalletReaderSvc
	WalletLedgerSvc
	WalletTxScopedSvc
}
