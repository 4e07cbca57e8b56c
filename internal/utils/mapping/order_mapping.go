package mapping

import (
	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/renohub/reno_backend/internal/models"
)

// ToModelOrder converts a domain Order to a model Order.
func ToModelOrder(d domain.Order) models.Order {
	return models.Order{
		OrderID:             d.OrderID,
		OrderNo:             d.OrderNo,
		OrderType:           models.OrderType(d.OrderType),
		Status:              models.OrderStatus(d.Status),
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
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainOrder converts a model Order to a domain Order.
func ToDomainOrder(m models.Order) domain.Order {
	return domain.Order{
		OrderID:             m.OrderID,
		OrderNo:             m.OrderNo,
		OrderType:           domain.OrderType(m.OrderType),
		Status:              domain.OrderStatus(m.Status),
		ParentOrderID:       m.ParentOrderID,
		RequesterID:         m.RequesterID,
		CraftsmanID:         m.CraftsmanID,
		Address:             m.Address,
		Description:         m.Description,
		Area:                m.Area,
		TotalPrice:          m.TotalPrice,
		TotalServiceFee:     m.TotalServiceFee,
		TotalServiceFeePaid: m.TotalServiceFeePaid,
		GangmasterCost:      m.GangmasterCost,
		GangmasterPaid:      m.GangmasterPaid,
		VisitingServiceNum:  m.VisitingServiceNum,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainOrderSlice converts a slice of model Orders to domain Orders.
func ToDomainOrderSlice(ms []models.Order) []domain.Order {
	ds := make([]domain.Order, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOrder(m)
	}
	return ds
}
