package domain

import (
	"github.com/shopspring/decimal"
)

// MainWorkGroupID is the group id of an order's primary price list.
// Groups above it are later additions billed and accepted independently.
const MainWorkGroupID = 1

// WorkKind identifies the trade of a work price item. Plumbing/electrical and
// masonry are the qualifying trades: on a gangmaster order their single-item
// acceptance releases a partial coordination-fee payout.
type WorkKind string

const (
	WorkKindPlumbingElectrical WorkKind = "PLUMBING_ELECTRICAL"
	WorkKindMasonry            WorkKind = "MASONRY"
	WorkKindCarpentry          WorkKind = "CARPENTRY"
	WorkKindPainting           WorkKind = "PAINTING"
	WorkKindTiling             WorkKind = "TILING"
	WorkKindOther              WorkKind = "OTHER"
)

// IsQualifying reports whether the trade releases partial gangmaster-fee
// payouts on single-item acceptance.
func (k WorkKind) IsQualifying() bool {
	return k == WorkKindPlumbingElectrical || k == WorkKindMasonry
}

// WorkPriceItem is one priced line of work inside an order.
//
// SettlementAmount is derived from the pricing fields and never taken from
// caller input. IsPaid and IsAccepted are monotonic: once true they are never
// reset, and re-applying either fails the idempotency guard.
type WorkPriceItem struct {
	ItemID      string   `json:"itemID"`
	OrderID     string   `json:"orderID"`
	WorkGroupID int      `json:"workGroupID"`
	WorkKind    WorkKind `json:"workKind"`
	Name        string   `json:"name"`

	WorkPrice         decimal.Decimal `json:"workPrice"` // unit price
	Quantity          decimal.Decimal `json:"quantity"`
	MinimumPrice      decimal.Decimal `json:"minimumPrice"`
	IsSetMinimumPrice bool            `json:"isSetMinimumPrice"`
	SettlementAmount  decimal.Decimal `json:"settlementAmount"`

	// ServiceFee is populated only for sub-group items; the main group's
	// service fee lives on the order.
	ServiceFee     decimal.Decimal `json:"serviceFee"`
	ServiceFeePaid bool            `json:"serviceFeePaid"`

	IsPaid     bool `json:"isPaid"`
	IsAccepted bool `json:"isAccepted"`

	// AssignedCraftsmanID is set on a gangmaster order's item once it has been
	// handed to a subcontractor. The item stays in the parent order for audit;
	// a clone lives in the derived order.
	AssignedCraftsmanID *string `json:"assignedCraftsmanID,omitempty"`

	// SourceItemID links a derived order's clone back to the original item in
	// the parent order.
	SourceItemID *string `json:"sourceItemID,omitempty"`

	AuditFields
}

// IsMainGroup reports whether the item belongs to the order's primary price list.
func (i *WorkPriceItem) IsMainGroup() bool {
	return i.WorkGroupID == MainWorkGroupID
}

// WorkGroupSelector addresses one work group of an order: either the main
// group or a sub group by its 0-based ordinal in creation order.
type WorkGroupSelector struct {
	Main       bool
	SubOrdinal int
}
