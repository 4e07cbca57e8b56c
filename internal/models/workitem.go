package models

import (
	"github.com/shopspring/decimal"
)

// WorkKind mirrors domain.WorkKind for persistence.
type WorkKind string

// WorkPriceItem is the database representation of a work price item row.
type WorkPriceItem struct {
	ItemID      string
	OrderID     string
	WorkGroupID int
	WorkKind    WorkKind
	Name        string

	WorkPrice         decimal.Decimal
	Quantity          decimal.Decimal
	MinimumPrice      decimal.Decimal
	IsSetMinimumPrice bool
	SettlementAmount  decimal.Decimal

	ServiceFee     decimal.Decimal
	ServiceFeePaid bool

	IsPaid     bool
	IsAccepted bool

	AssignedCraftsmanID *string
	SourceItemID        *string

	AuditFields
}
