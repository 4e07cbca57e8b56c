package dto

import (
	"time"

	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the payload for placing a new work order.
type CreateOrderRequest struct {
	OrderType   string          `json:"orderType" binding:"required,oneof=CRAFTSMAN GANGMASTER"`
	Area        decimal.Decimal `json:"area"` // required for GANGMASTER orders, validated in service
	Address     string          `json:"address" binding:"required"`
	Description string          `json:"description"`
}

// WorkPriceItemInput is one priced line in an addWorkPrices batch. The
// settlement amount is always derived server-side, never taken from here.
type WorkPriceItemInput struct {
	Name              string          `json:"name" binding:"required"`
	WorkKind          string          `json:"workKind" binding:"required"`
	WorkPrice         decimal.Decimal `json:"workPrice" binding:"required"`
	Quantity          decimal.Decimal `json:"quantity" binding:"required"`
	MinimumPrice      decimal.Decimal `json:"minimumPrice"`
	IsSetMinimumPrice bool            `json:"isSetMinimumPrice"`
}

// AddWorkPricesRequest is the payload for adding a price group to an order.
type AddWorkPricesRequest struct {
	Items []WorkPriceItemInput `json:"items" binding:"required,min=1,dive"`
}

// WorkGroupSelectorRequest addresses either the main group or one sub group
// by its 0-based ordinal (in creation order).
type WorkGroupSelectorRequest struct {
	Group      string `json:"group" binding:"required,oneof=MAIN SUB"`
	SubOrdinal int    `json:"subOrdinal" binding:"min=0"`
}

// ToSelector converts the request into the domain selector.
func (r WorkGroupSelectorRequest) ToSelector() domain.WorkGroupSelector {
	return domain.WorkGroupSelector{Main: r.Group == "MAIN", SubOrdinal: r.SubOrdinal}
}

// AcceptSingleItemRequest accepts one qualifying main-group item of a
// gangmaster order.
type AcceptSingleItemRequest struct {
	ItemID string `json:"itemID" binding:"required"`
}

// AssignWorkItemsRequest hands a batch of a gangmaster order's items to a
// subcontracted craftsman.
type AssignWorkItemsRequest struct {
	ItemIDs     []string `json:"itemIDs" binding:"required,min=1"`
	CraftsmanID string   `json:"craftsmanID" binding:"required"`
}

// ListOrdersParams holds pagination parameters for listing orders.
type ListOrdersParams struct {
	Limit     int
	NextToken *string
}

// WorkPriceItemResponse is the API representation of a work price item.
type WorkPriceItemResponse struct {
	ItemID              string          `json:"itemID"`
	OrderID             string          `json:"orderID"`
	WorkGroupID         int             `json:"workGroupID"`
	WorkKind            string          `json:"workKind"`
	Name                string          `json:"name"`
	WorkPrice           decimal.Decimal `json:"workPrice"`
	Quantity            decimal.Decimal `json:"quantity"`
	MinimumPrice        decimal.Decimal `json:"minimumPrice"`
	IsSetMinimumPrice   bool            `json:"isSetMinimumPrice"`
	SettlementAmount    decimal.Decimal `json:"settlementAmount"`
	ServiceFee          decimal.Decimal `json:"serviceFee"`
	ServiceFeePaid      bool            `json:"serviceFeePaid"`
	IsPaid              bool            `json:"isPaid"`
	IsAccepted          bool            `json:"isAccepted"`
	AssignedCraftsmanID *string         `json:"assignedCraftsmanID,omitempty"`
	SourceItemID        *string         `json:"sourceItemID,omitempty"`
}

// OrderResponse is the API representation of an order aggregate.
type OrderResponse struct {
	OrderID             string                  `json:"orderID"`
	OrderNo             string                  `json:"orderNo"`
	OrderType           string                  `json:"orderType"`
	Status              string                  `json:"status"`
	ParentOrderID       *string                 `json:"parentOrderID,omitempty"`
	RequesterID         string                  `json:"requesterID"`
	CraftsmanID         *string                 `json:"craftsmanID,omitempty"`
	Address             string                  `json:"address"`
	Description         string                  `json:"description"`
	Area                decimal.Decimal         `json:"area"`
	TotalPrice          decimal.Decimal         `json:"totalPrice"`
	TotalServiceFee     decimal.Decimal         `json:"totalServiceFee"`
	TotalServiceFeePaid bool                    `json:"totalServiceFeePaid"`
	GangmasterCost      decimal.Decimal         `json:"gangmasterCost"`
	GangmasterPaid      decimal.Decimal         `json:"gangmasterPaid"`
	VisitingServiceNum  int                     `json:"visitingServiceNum"`
	CreatedAt           time.Time               `json:"createdAt"`
	WorkItems           []WorkPriceItemResponse `json:"workItems,omitempty"`
}

// ListOrdersResponse is a page of orders plus the cursor for the next page.
type ListOrdersResponse struct {
	Orders    []OrderResponse `json:"orders"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToWorkPriceItemResponse converts a domain item to its API representation.
func ToWorkPriceItemResponse(d domain.WorkPriceItem) WorkPriceItemResponse {
	return WorkPriceItemResponse{
		ItemID:              d.ItemID,
		OrderID:             d.OrderID,
		WorkGroupID:         d.WorkGroupID,
		WorkKind:            string(d.WorkKind),
		Name:                d.Name,
		WorkPrice:           d.WorkPrice,
		Quantity:            d.Quantity,
		MinimumPrice:        d.MinimumPrice,
		IsSetMinimumPrice:   d.IsSetMinimumPrice,
		SettlementAmount:    d.SettlementAmount,
		ServiceFee:          d.ServiceFee,
		ServiceFeePaid:      d.ServiceFeePaid,
		IsPaid:              d.IsPaid,
		IsAccepted:          d.IsAccepted,
		AssignedCraftsmanID: d.AssignedCraftsmanID,
		SourceItemID:        d.SourceItemID,
	}
}

// ToOrderResponse converts a domain order to its API representation.
func ToOrderResponse(d *domain.Order) OrderResponse {
	resp := OrderResponse{
		OrderID:             d.OrderID,
		OrderNo:             d.OrderNo,
		OrderType:           string(d.OrderType),
		Status:              string(d.Status),
		ParentOrderID:       d.ParentOrderID,
		RequesterID:         d.RequesterID,
		CraftsmanID:         d.CraftsmanID,
		Address:             d.Address,
		Description:         d.Description,
		Area:                d.Area,
		TotalPrice:          d.TotalPrice,
		TotalServiceFee:     d.TotalServiceFee,
		TotalServiceFeePaid: d.TotalServiceFeePaid,
		GangmasterCost:      d.GangmasterCost,
		GangmasterPaid:      d.GangmasterPaid,
		VisitingServiceNum:  d.VisitingServiceNum,
		CreatedAt:           d.CreatedAt,
	}
	if len(d.WorkItems) > 0 {
		resp.WorkItems = make([]WorkPriceItemResponse, len(d.WorkItems))
		for i, item := range d.WorkItems {
			resp.WorkItems[i] = ToWorkPriceItemResponse(item)
		}
	}
	return resp
}
