package services

import (
	"context"

	"github.com/renohub/reno_backend/internal/core/domain"
)

// NotifierSvc informs external parties about order transitions. Calls are
// fire-and-forget: failures are logged and never roll back the settlement
// transaction that triggered them.
type NotifierSvc interface {
	NotifyOrderAccepted(ctx context.Context, order *domain.Order)
	NotifyOrderCompleted(ctx context.Context, order *domain.Order)
	NotifyWorkPricesAdded(ctx context.Context, order *domain.Order, workGroupID int)
}
