package mapping

import (
	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/renohub/reno_backend/internal/models"
)

// ToModelWorkPriceItem converts a domain WorkPriceItem to a model WorkPriceItem.
func ToModelWorkPriceItem(d domain.WorkPriceItem) models.WorkPriceItem {
	return models.WorkPriceItem{
		ItemID:              d.ItemID,
		OrderID:             d.OrderID,
		WorkGroupID:         d.WorkGroupID,
		WorkKind:            models.WorkKind(d.WorkKind),
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
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWorkPriceItem converts a model WorkPriceItem to a domain WorkPriceItem.
func ToDomainWorkPriceItem(m models.WorkPriceItem) domain.WorkPriceItem {
	return domain.WorkPriceItem{
		ItemID:              m.ItemID,
		OrderID:             m.OrderID,
		WorkGroupID:         m.WorkGroupID,
		WorkKind:            domain.WorkKind(m.WorkKind),
		Name:                m.Name,
		WorkPrice:           m.WorkPrice,
		Quantity:            m.Quantity,
		MinimumPrice:        m.MinimumPrice,
		IsSetMinimumPrice:   m.IsSetMinimumPrice,
		SettlementAmount:    m.SettlementAmount,
		ServiceFee:          m.ServiceFee,
		ServiceFeePaid:      m.ServiceFeePaid,
		IsPaid:              m.IsPaid,
		IsAccepted:          m.IsAccepted,
		AssignedCraftsmanID: m.AssignedCraftsmanID,
		SourceItemID:        m.SourceItemID,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainWorkPriceItemSlice converts a slice of model items to domain items.
func ToDomainWorkPriceItemSlice(ms []models.WorkPriceItem) []domain.WorkPriceItem {
	ds := make([]domain.WorkPriceItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainWorkPriceItem(m)
	}
	return ds
}
