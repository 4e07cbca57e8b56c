package models

import (
	"github.com/shopspring/decimal"
)

// OrderType mirrors domain.OrderType for persistence.
type OrderType string

// OrderStatus mirrors domain.OrderStatus for persistence.
type OrderStatus string

// Order is the database representation of an order row.
type Order struct {
	OrderID       string
	OrderNo       string
	OrderType     OrderType
	Status        OrderStatus
	ParentOrderID *string
	RequesterID   string
	CraftsmanID   *string
	Address       string
	Description   string

	Area decimal.Decimal

	TotalPrice          decimal.Decimal
	TotalServiceFee     decimal.Decimal
	TotalServiceFeePaid bool

	GangmasterCost     decimal.Decimal
	GangmasterPaid     decimal.Decimal
	VisitingServiceNum int

	AuditFields
}
