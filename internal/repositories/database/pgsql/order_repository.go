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
	"github.com/renohub/reno_backend/internal/utils/pagination"
)

type PgxOrderRepository struct {
	BaseRepository
}

// newPgxOrderRepository creates a new repository for order data.
func newPgxOrderRepository(pool *pgxpool.Pool) portsrepo.OrderRepositoryWithTx {
	return &PgxOrderRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxOrderRepository implements portsrepo.OrderRepositoryWithTx
var _ portsrepo.OrderRepositoryWithTx = (*PgxOrderRepository)(nil)

const orderColumns = `order_id, order_no, order_type, status, parent_order_id, requester_id, craftsman_id, address, description, area, total_price, total_service_fee, total_service_fee_paid, gangmaster_cost, gangmaster_paid, visiting_service_num, created_at, created_by, last_updated_at, last_updated_by`

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var m models.Order
	err := row.Scan(
		&m.OrderID,
		&m.OrderNo,
		&m.OrderType,
		&m.Status,
		&m.ParentOrderID,
		&m.RequesterID,
		&m.CraftsmanID,
		&m.Address,
		&m.Description,
		&m.Area,
		&m.TotalPrice,
		&m.TotalServiceFee,
		&m.TotalServiceFeePaid,
		&m.GangmasterCost,
		&m.GangmasterPaid,
		&m.VisitingServiceNum,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainOrder(m)
	return &d, nil
}

func (r *PgxOrderRepository) findOrder(ctx context.Context, q rowQuerier, query string, args ...any) (*domain.Order, error) {
	order, err := scanOrder(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return order, nil
}

// FindOrderByID retrieves a specific order by its unique identifier.
func (r *PgxOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1;`
	return r.findOrder(ctx, r.Pool, query, orderID)
}

// FindOrderByIDForUpdate selects the order row and locks it for update.
func (r *PgxOrderRepository) FindOrderByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1 FOR UPDATE;`
	return r.findOrder(ctx, tx, query, orderID)
}

// FindDerivedOrderForUpdate finds and locks the derived sub-order of a
// (parent order, craftsman) pair.
func (r *PgxOrderRepository) FindDerivedOrderForUpdate(ctx context.Context, tx pgx.Tx, parentOrderID, craftsmanID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE parent_order_id = $1 AND craftsman_id = $2 FOR UPDATE;`
	return r.findOrder(ctx, tx, query, parentOrderID, craftsmanID)
}

// ListOrdersByUser retrieves a token-paginated list of orders where the user
// is either the requester or the executing craftsman, newest first.
func (r *PgxOrderRepository) ListOrdersByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Order, *string, error) {
	args := []any{userID, limit + 1}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE (requester_id = $1 OR craftsman_id = $1)`
	if nextToken != nil {
		cursorTime, cursorID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, order_id) < ($3, $4)`
		args = append(args, cursorTime, cursorID)
	}
	query += ` ORDER BY created_at DESC, order_id DESC LIMIT $2;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	var token *string
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.OrderID)
		token = &t
	}
	return orders, token, nil
}

func (r *PgxOrderRepository) saveOrder(ctx context.Context, q rowQuerier, order domain.Order) error {
	m := mapping.ToModelOrder(order)
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := q.Exec(ctx, query,
		m.OrderID,
		m.OrderNo,
		m.OrderType,
		m.Status,
		m.ParentOrderID,
		m.RequesterID,
		m.CraftsmanID,
		m.Address,
		m.Description,
		m.Area,
		m.TotalPrice,
		m.TotalServiceFee,
		m.TotalServiceFeePaid,
		m.GangmasterCost,
		m.GangmasterPaid,
		m.VisitingServiceNum,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: order %s already exists", apperrors.ErrDuplicate, m.OrderID)
		}
		return fmt.Errorf("failed to save order %s: %w", m.OrderID, err)
	}
	return nil
}

// SaveOrder persists a new order.
func (r *PgxOrderRepository) SaveOrder(ctx context.Context, order domain.Order) error {
	return r.saveOrder(ctx, r.Pool, order)
}

// SaveOrderInTx persists a new order within an existing transaction.
func (r *PgxOrderRepository) SaveOrderInTx(ctx context.Context, tx pgx.Tx, order domain.Order) error {
	return r.saveOrder(ctx, tx, order)
}

// UpdateOrderStatusInTx flips the order status within a transaction.
func (r *PgxOrderRepository) UpdateOrderStatusInTx(ctx context.Context, tx pgx.Tx, orderID string, status domain.OrderStatus, craftsmanID *string, userID string, now time.Time) error {
	query := `
		UPDATE orders
		SET status = $2, craftsman_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE order_id = $1;
	`
	tag, err := tx.Exec(ctx, query, orderID, models.OrderStatus(status), craftsmanID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status of order %s: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", apperrors.ErrNotFound, orderID)
	}
	return nil
}

// UpdateOrderFinancialsInTx persists the recomputed financial projection.
func (r *PgxOrderRepository) UpdateOrderFinancialsInTx(ctx context.Context, tx pgx.Tx, order domain.Order) error {
	m := mapping.ToModelOrder(order)
	query := `
		UPDATE orders
		SET total_price = $2, total_service_fee = $3, total_service_fee_paid = $4,
		    gangmaster_cost = $5, gangmaster_paid = $6, visiting_service_num = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE order_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.OrderID,
		m.TotalPrice,
		m.TotalServiceFee,
		m.TotalServiceFeePaid,
		m.GangmasterCost,
		m.GangmasterPaid,
		m.VisitingServiceNum,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update financials of order %s: %w", m.OrderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", apperrors.ErrNotFound, m.OrderID)
	}
	return nil
}
