package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renohub/reno_backend/internal/apperrors"
	"github.com/renohub/reno_backend/internal/core/domain"
	portsrepo "github.com/renohub/reno_backend/internal/core/ports/repositories"
	"github.com/renohub/reno_backend/internal/models"
	"github.com/renohub/reno_backend/internal/utils/mapping"
)

type PgxWorkItemRepository struct {
	BaseRepository
}

// newPgxWorkItemRepository creates a new repository for work price item data.
func newPgxWorkItemRepository(pool *pgxpool.Pool) portsrepo.WorkItemRepositoryFacade {
	return &PgxWorkItemRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxWorkItemRepository implements portsrepo.WorkItemRepositoryFacade
var _ portsrepo.WorkItemRepositoryFacade = (*PgxWorkItemRepository)(nil)

const workItemColumns = `item_id, order_id, work_group_id, work_kind, name, work_price, quantity, minimum_price, is_set_minimum_price, settlement_amount, service_fee, service_fee_paid, is_paid, is_accepted, assigned_craftsman_id, source_item_id, created_at, created_by, last_updated_at, last_updated_by`

func scanWorkItem(row pgx.Row) (domain.WorkPriceItem, error) {
	var m models.WorkPriceItem
	err := row.Scan(
		&m.ItemID,
		&m.OrderID,
		&m.WorkGroupID,
		&m.WorkKind,
		&m.Name,
		&m.WorkPrice,
		&m.Quantity,
		&m.MinimumPrice,
		&m.IsSetMinimumPrice,
		&m.SettlementAmount,
		&m.ServiceFee,
		&m.ServiceFeePaid,
		&m.IsPaid,
		&m.IsAccepted,
		&m.AssignedCraftsmanID,
		&m.SourceItemID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.WorkPriceItem{}, err
	}
	return mapping.ToDomainWorkPriceItem(m), nil
}

func (r *PgxWorkItemRepository) findItems(ctx context.Context, q rowQuerier, query string, orderID string) ([]domain.WorkPriceItem, error) {
	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items of order %s: %w", orderID, err)
	}
	defer rows.Close()

	var items []domain.WorkPriceItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work item rows: %w", err)
	}
	return items, nil
}

// FindItemsByOrderID retrieves all items of an order, ordered by group then
// creation time.
func (r *PgxWorkItemRepository) FindItemsByOrderID(ctx context.Context, orderID string) ([]domain.WorkPriceItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_price_items WHERE order_id = $1 ORDER BY work_group_id, created_at, item_id;`
	return r.findItems(ctx, r.Pool, query, orderID)
}

// FindItemsByOrderIDForUpdate selects all of an order's items and locks them
// for update.
func (r *PgxWorkItemRepository) FindItemsByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) ([]domain.WorkPriceItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_price_items WHERE order_id = $1 ORDER BY work_group_id, created_at, item_id FOR UPDATE;`
	return r.findItems(ctx, tx, query, orderID)
}

// SaveWorkItemsInTx inserts a batch of items within a transaction.
func (r *PgxWorkItemRepository) SaveWorkItemsInTx(ctx context.Context, tx pgx.Tx, items []domain.WorkPriceItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO work_price_items (` + workItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	batch := &pgx.Batch{}
	for _, item := range items {
		m := mapping.ToModelWorkPriceItem(item)
		batch.Queue(query,
			m.ItemID,
			m.OrderID,
			m.WorkGroupID,
			m.WorkKind,
			m.Name,
			m.WorkPrice,
			m.Quantity,
			m.MinimumPrice,
			m.IsSetMinimumPrice,
			m.SettlementAmount,
			m.ServiceFee,
			m.ServiceFeePaid,
			m.IsPaid,
			m.IsAccepted,
			m.AssignedCraftsmanID,
			m.SourceItemID,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: work item already exists", apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert work items: %w", err)
		}
	}
	return nil
}

func (r *PgxWorkItemRepository) updateItems(ctx context.Context, tx pgx.Tx, query string, itemIDs []string, args ...any) error {
	if len(itemIDs) == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, query, append([]any{itemIDs}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update work items: %w", err)
	}
	if int(tag.RowsAffected()) != len(itemIDs) {
		return fmt.Errorf("%w: expected %d work items, updated %d", apperrors.ErrNotFound, len(itemIDs), tag.RowsAffected())
	}
	return nil
}

// MarkItemsPaidInTx flips is_paid for the given items. Sub-group items carry
// their own service fee, so its paid flag flips in the same statement.
func (r *PgxWorkItemRepository) MarkItemsPaidInTx(ctx context.Context, tx pgx.Tx, itemIDs []string, userID string, now time.Time) error {
	query := `
		UPDATE work_price_items
		SET is_paid = TRUE,
		    service_fee_paid = (work_group_id <> 1) OR service_fee_paid,
		    last_updated_at = $2, last_updated_by = $3
		WHERE item_id = ANY($1);
	`
	return r.updateItems(ctx, tx, query, itemIDs, now, userID)
}

// MarkItemsAcceptedInTx flips is_accepted for the given items.
func (r *PgxWorkItemRepository) MarkItemsAcceptedInTx(ctx context.Context, tx pgx.Tx, itemIDs []string, userID string, now time.Time) error {
	query := `
		UPDATE work_price_items
		SET is_accepted = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE item_id = ANY($1);
	`
	return r.updateItems(ctx, tx, query, itemIDs, now, userID)
}

// SetAssignedCraftsmanInTx records the subcontractor on the given parent items.
func (r *PgxWorkItemRepository) SetAssignedCraftsmanInTx(ctx context.Context, tx pgx.Tx, itemIDs []string, craftsmanID string, userID string, now time.Time) error {
	query := `
		UPDATE work_price_items
		SET assigned_craftsman_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE item_id = ANY($1);
	`
	return r.updateItems(ctx, tx, query, itemIDs, craftsmanID, now, userID)
}
