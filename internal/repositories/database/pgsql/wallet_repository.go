package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/renohub/reno_backend/internal/apperrors"
	"github.com/renohub/reno_backend/internal/core/domain"
	portsrepo "github.com/renohub/reno_backend/internal/core/ports/repositories"
	"github.com/renohub/reno_backend/internal/models"
	"github.com/renohub/reno_backend/internal/utils/mapping"
	"github.com/renohub/reno_backend/internal/utils/pagination"
)

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for wallet data.
func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryWithTx {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepositoryWithTx
var _ portsrepo.WalletRepositoryWithTx = (*PgxWalletRepository)(nil)

const walletColumns = `wallet_id, craftsman_id, balance, frozen_money, created_at, created_by, last_updated_at, last_updated_by`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var m models.Wallet
	err := row.Scan(
		&m.WalletID,
		&m.CraftsmanID,
		&m.Balance,
		&m.FrozenMoney,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainWallet(m)
	return &d, nil
}

// FindWalletByCraftsmanID retrieves a wallet. Returns ErrNotFound when no
// money event has created one yet.
func (r *PgxWalletRepository) FindWalletByCraftsmanID(ctx context.Context, craftsmanID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE craftsman_id = $1;`
	wallet, err := scanWallet(r.Pool.QueryRow(ctx, query, craftsmanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet of craftsman %s: %w", craftsmanID, err)
	}
	return wallet, nil
}

// FindOrCreateWalletForUpdate locks the craftsman's wallet row, creating it
// with zero balances first if this is the first money event. The insert uses
// ON CONFLICT DO NOTHING so two concurrent first movements race safely; the
// loser of the insert locks the winner's row on the second select.
func (r *PgxWalletRepository) FindOrCreateWalletForUpdate(ctx context.Context, tx pgx.Tx, craftsmanID string, userID string, now time.Time) (*domain.Wallet, error) {
	selectQuery := `SELECT ` + walletColumns + ` FROM wallets WHERE craftsman_id = $1 FOR UPDATE;`

	wallet, err := scanWallet(tx.QueryRow(ctx, selectQuery, craftsmanID))
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to lock wallet of craftsman %s: %w", craftsmanID, err)
	}

	insertQuery := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, 0, 0, $3, $4, $3, $4)
		ON CONFLICT (craftsman_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, insertQuery, uuid.NewString(), craftsmanID, now, userID); err != nil {
		return nil, fmt.Errorf("failed to create wallet for craftsman %s: %w", craftsmanID, err)
	}

	wallet, err = scanWallet(tx.QueryRow(ctx, selectQuery, craftsmanID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet of craftsman %s after create: %w", craftsmanID, err)
	}
	return wallet, nil
}

// UpdateWalletBalancesInTx writes the new balance and frozen amount of a
// locked wallet row.
func (r *PgxWalletRepository) UpdateWalletBalancesInTx(ctx context.Context, tx pgx.Tx, walletID string, balance, frozenMoney decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE wallets
		SET balance = $2, frozen_money = $3, last_updated_at = $4, last_updated_by = $5
		WHERE wallet_id = $1;
	`
	tag, err := tx.Exec(ctx, query, walletID, balance, frozenMoney, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update wallet %s: %w", walletID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, walletID)
	}
	return nil
}

// InsertWalletTransactionInTx appends one ledger row.
func (r *PgxWalletRepository) InsertWalletTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction) error {
	m := mapping.ToModelWalletTransaction(txn)
	query := `
		INSERT INTO wallet_transactions (transaction_id, wallet_id, craftsman_id, amount, txn_type, reason, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.WalletID,
		m.CraftsmanID,
		m.Amount,
		m.TxnType,
		m.Reason,
		m.OrderID,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wallet transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// ListWalletTransactions retrieves a token-paginated slice of the append-only
// ledger, newest first.
func (r *PgxWalletRepository) ListWalletTransactions(ctx context.Context, craftsmanID string, limit int, nextToken *string) ([]domain.WalletTransaction, *string, error) {
	args := []any{craftsmanID, limit + 1}
	query := `
		SELECT transaction_id, wallet_id, craftsman_id, amount, txn_type, reason, order_id, created_at
		FROM wallet_transactions
		WHERE craftsman_id = $1`
	if nextToken != nil {
		cursorTime, cursorID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, transaction_id) < ($3, $4)`
		args = append(args, cursorTime, cursorID)
	}
	query += ` ORDER BY created_at DESC, transaction_id DESC LIMIT $2;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list wallet transactions of craftsman %s: %w", craftsmanID, err)
	}
	defer rows.Close()

	var txns []domain.WalletTransaction
	for rows.Next() {
		var m models.WalletTransaction
		err := rows.Scan(
			&m.TransactionID,
			&m.WalletID,
			&m.CraftsmanID,
			&m.Amount,
			&m.TxnType,
			&m.Reason,
			&m.OrderID,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan wallet transaction row: %w", err)
		}
		txns = append(txns, mapping.ToDomainWalletTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating wallet transaction rows: %w", err)
	}

	var token *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		token = &t
	}
	return txns, token, nil
}
