package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/renohub/reno_backend/internal/core/domain"
)

// OrderReader defines read operations for order data.
type OrderReader interface {
	// FindOrderByID retrieves a specific order by its unique identifier.
	FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error)

	// ListOrdersByUser retrieves a token-paginated list of orders where the
	// user is either the requester or the executing craftsman.
	ListOrdersByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Order, *string, error)
}

// OrderWriter defines write operations for order data.
type OrderWriter interface {
	// SaveOrder persists a new order.
	SaveOrder(ctx context.Context, order domain.Order) error
}

// OrderTransactionSupport defines the lock-taking operations used inside a
// settlement transaction.
type OrderTransactionSupport interface {
	// FindOrderByIDForUpdate selects the order row and locks it for update.
	FindOrderByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.Order, error)

	// SaveOrderInTx persists a new order within an existing transaction
	// (used for derived sub-orders created during assignment).
	SaveOrderInTx(ctx context.Context, tx pgx.Tx, order domain.Order) error

	// UpdateOrderStatusInTx flips the order status within a transaction.
	UpdateOrderStatusInTx(ctx context.Context, tx pgx.Tx, orderID string, status domain.OrderStatus, craftsmanID *string, userID string, now time.Time) error

	// UpdateOrderFinancialsInTx persists the recomputed financial projection
	// (totals, service fee + paid flag, gangmaster fee fields).
	UpdateOrderFinancialsInTx(ctx context.Context, tx pgx.Tx, order domain.Order) error

	// FindDerivedOrderForUpdate finds the derived sub-order for a
	// (parent order, craftsman) pair and locks it. Returns ErrNotFound when
	// the craftsman has no derived order under this parent yet.
	FindDerivedOrderForUpdate(ctx context.Context, tx pgx.Tx, parentOrderID, craftsmanID string) (*domain.Order, error)
}

// OrderRepositoryFacade combines all order-related repository interfaces.
type OrderRepositoryFacade interface {
	OrderReader
	OrderWriter
	OrderTransactionSupport
}

// OrderRepositoryWithTx extends OrderRepositoryFacade with transaction control.
type OrderRepositoryWithTx interface {
	OrderRepositoryFacade
	TransactionManager
}
