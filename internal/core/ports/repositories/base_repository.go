package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management.
// Every multi-row settlement mutation runs inside one transaction obtained
// here, with row-level locks taken through the ...ForUpdate methods.
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
