package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/renohub/reno_backend/internal/core/domain"
)

// WorkItemReader defines read operations for work price items.
type WorkItemReader interface {
	// FindItemsByOrderID retrieves all items of an order, ordered by group
	// then creation time.
	FindItemsByOrderID(ctx context.Context, orderID string) ([]domain.WorkPriceItem, error)
}

// WorkItemTransactionSupport defines item mutations executed inside a
// settlement transaction.
type WorkItemTransactionSupport interface {
	// FindItemsByOrderIDForUpdate selects all of an order's items and locks
	// them for update.
	FindItemsByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) ([]domain.WorkPriceItem, error)

	// SaveWorkItemsInTx inserts a batch of items within a transaction.
	SaveWorkItemsInTx(ctx context.Context, tx pgx.Tx, items []domain.WorkPriceItem) error

	// MarkItemsPaidInTx flips is_paid (and service_fee_paid for sub-group
	// items) for the given items.
	MarkItemsPaidInTx(ctx context.Context, tx pgx.Tx, itemIDs []string, userID string, now time.Time) error

	// MarkItemsAcceptedInTx flips is_accepted for the given items.
	MarkItemsAcceptedInTx(ctx context.Context, tx pgx.Tx, itemIDs []string, userID string, now time.Time) error

	// SetAssignedCraftsmanInTx records the subcontractor on the given parent
	// items.
	SetAssignedCraftsmanInTx(ctx context.Context, tx pgx.Tx, itemIDs []string, craftsmanID string, userID string, now time.Time) error
}

// WorkItemRepositoryFacade combines all work-item repository interfaces.
type WorkItemRepositoryFacade interface {
	WorkItemReader
	WorkItemTransactionSupport
}
