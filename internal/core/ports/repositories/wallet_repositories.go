package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WalletReader defines read operations for wallet data.
type WalletReader interface {
	// FindWalletByCraftsmanID retrieves a wallet. Returns ErrNotFound when no
	// money event has created one yet.
	FindWalletByCraftsmanID(ctx context.Context, craftsmanID string) (*domain.Wallet, error)

	// ListWalletTransactions retrieves a token-paginated slice of the
	// append-only ledger, newest first.
	ListWalletTransactions(ctx context.Context, craftsmanID string, limit int, nextToken *string) ([]domain.WalletTransaction, *string, error)
}

// WalletTransactionSupport defines the balance mutations executed under a row
// lock inside a transaction. The lock serializes the read-modify-write per
// craftsman so concurrent settlements cannot race each other.
type WalletTransactionSupport interface {
	// FindOrCreateWalletForUpdate locks the craftsman's wallet row, creating
	// it with zero balances first if this is the first money event.
	FindOrCreateWalletForUpdate(ctx context.Context, tx pgx.Tx, craftsmanID string, userID string, now time.Time) (*domain.Wallet, error)

	// UpdateWalletBalancesInTx writes the new balance and frozen amount of a
	// locked wallet row.
	UpdateWalletBalancesInTx(ctx context.Context, tx pgx.Tx, walletID string, balance, frozenMoney decimal.Decimal, userID string, now time.Time) error

	// InsertWalletTransactionInTx appends one ledger row.
	InsertWalletTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction) error
}

// WalletRepositoryFacade combines all wallet repository interfaces.
type WalletRepositoryFacade interface {
	WalletReader
	WalletTransactionSupport
}

// WalletRepositoryWithTx extends WalletRepositoryFacade with transaction control.
type WalletRepositoryWithTx interface {
	WalletRepositoryFacade
	TransactionManager
}
