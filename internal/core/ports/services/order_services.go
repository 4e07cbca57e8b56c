package services

import (
	"context"

	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/renohub/reno_backend/internal/dto"
)

// OrderReaderSvc defines read operations over order aggregates.
type OrderReaderSvc interface {
	// GetOrder retrieves an order, optionally with its work price items.
	GetOrder(ctx context.Context, orderID string, withItems bool) (*domain.Order, error)

	// ListOrders retrieves a token-paginated list of the user's orders.
	ListOrders(ctx context.Context, userID string, params dto.ListOrdersParams) (*dto.ListOrdersResponse, error)
}

// OrderLifecycleSvc drives the order state machine and the settlement flow.
type OrderLifecycleSvc interface {
	// CreateOrder places a new pending order for the requester.
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest, requesterID string) (*domain.Order, error)

	// AcceptOrder moves a pending order to accepted and records the executing
	// craftsman.
	AcceptOrder(ctx context.Context, orderID, craftsmanID string) (*domain.Order, error)

	// AddWorkPrices adds a price group (main first, then sub groups) to an
	// accepted order.
	AddWorkPrices(ctx context.Context, orderID string, req dto.AddWorkPricesRequest, craftsmanID string) (*domain.Order, error)

	// ConfirmPayment flips is_paid for every item of the selected group, after
	// the payment gateway has signalled that the money arrived platform-side.
	ConfirmPayment(ctx context.Context, orderID string, sel domain.WorkGroupSelector, requesterID string) error

	// AcceptWorkGroup accepts a whole paid group and settles it: construction
	// payout, possible completion, deposit freeze.
	AcceptWorkGroup(ctx context.Context, orderID string, sel domain.WorkGroupSelector, requesterID string) (*domain.Order, error)

	// AcceptWorkItem accepts one qualifying main-group item of a gangmaster
	// order, releasing the partial coordination-fee payout.
	AcceptWorkItem(ctx context.Context, orderID, itemID string, requesterID string) (*domain.Order, error)

	// CancelOrder cancels a pending or accepted order. No fund reversal.
	CancelOrder(ctx context.Context, orderID string, requesterID string) error
}

// OrderSvcFacade combines all order service interfaces.
type OrderSvcFacade interface {
	OrderReaderSvc
	OrderLifecycleSvc
}
