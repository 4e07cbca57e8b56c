package domain

import (
	"github.com/shopspring/decimal"
)

// OrderType distinguishes a plain craftsman engagement from a gangmaster
// (foreman) engagement that carries a tiered coordination fee and may be
// subcontracted.
type OrderType string

const (
	OrderTypeCraftsman  OrderType = "CRAFTSMAN"
	OrderTypeGangmaster OrderType = "GANGMASTER"
)

// OrderStatus is the lifecycle state of an order.
// Transitions: PENDING -> ACCEPTED -> COMPLETED; PENDING|ACCEPTED -> CANCELLED.
// COMPLETED and CANCELLED are terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is an engagement between a requester and a craftsman (or gangmaster).
// The financial summary fields are a projection over the order's own work
// price items and are recomputed inside the same transaction as every item
// mutation; they are never cached independently.
type Order struct {
	OrderID       string      `json:"orderID"`
	OrderNo       string      `json:"orderNo"`
	OrderType     OrderType   `json:"orderType"`
	Status        OrderStatus `json:"status"`
	ParentOrderID *string     `json:"parentOrderID,omitempty"` // set on derived sub-orders created by assignment
	RequesterID   string      `json:"requesterID"`
	CraftsmanID   *string     `json:"craftsmanID,omitempty"` // nil until accepted
	Address       string      `json:"address"`
	Description   string      `json:"description"`

	// Area is the renovation area in square metres; input to the gangmaster
	// fee tier lookup. Zero for plain craftsman orders.
	Area decimal.Decimal `json:"area"`

	TotalPrice          decimal.Decimal `json:"totalPrice"`
	TotalServiceFee     decimal.Decimal `json:"totalServiceFee"`
	TotalServiceFeePaid bool            `json:"totalServiceFeePaid"`

	// GangmasterCost is the gross coordination fee; GangmasterPaid is the part
	// of it already credited through 25%-per-item acceptances. Both zero on
	// non-gangmaster orders.
	GangmasterCost    decimal.Decimal `json:"gangmasterCost"`
	GangmasterPaid    decimal.Decimal `json:"gangmasterPaid"`
	VisitingServiceNum int            `json:"visitingServiceNum"`

	AuditFields

	// WorkItems is populated on demand; it is not part of the persisted row.
	WorkItems []WorkPriceItem `json:"workItems,omitempty"`
}

// IsDerived reports whether this order was cloned out of a parent gangmaster
// order for a subcontracted craftsman.
func (o *Order) IsDerived() bool {
	return o.ParentOrderID != nil
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	switch o.Status {
	case OrderStatusPending:
		return next == OrderStatusAccepted || next == OrderStatusCancelled
	case OrderStatusAccepted:
		return next == OrderStatusCompleted || next == OrderStatusCancelled
	default:
		return false
	}
}
