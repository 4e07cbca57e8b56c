package services

import (
	"context"
	"log/slog"

	"github.com/renohub/reno_backend/internal/core/domain"
	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/middleware"
)

// logNotifier is the notification collaborator used until a real delivery
// channel is wired in. It records each transition to the request logger;
// being fire-and-forget, nothing here can fail the settlement that called it.
type logNotifier struct{}

// NewLogNotifier creates a notifier that only logs transitions.
func NewLogNotifier() portssvc.NotifierSvc {
	return &logNotifier{}
}

var _ portssvc.NotifierSvc = (*logNotifier)(nil)

func (n *logNotifier) NotifyOrderAccepted(ctx context.Context, order *domain.Order) {
	middleware.GetLoggerFromCtx(ctx).Info("Notify: order accepted",
		slog.String("order_id", order.OrderID),
		slog.String("order_no", order.OrderNo),
		slog.String("requester_id", order.RequesterID),
	)
}

func (n *logNotifier) NotifyOrderCompleted(ctx context.Context, order *domain.Order) {
	middleware.GetLoggerFromCtx(ctx).Info("Notify: order completed",
		slog.String("order_id", order.OrderID),
		slog.String("order_no", order.OrderNo),
		slog.String("requester_id", order.RequesterID),
	)
}

func (n *logNotifier) NotifyWorkPricesAdded(ctx context.Context, order *domain.Order, workGroupID int) {
	middleware.GetLoggerFromCtx(ctx).Info("Notify: work prices added",
		slog.String("order_id", order.OrderID),
		slog.Int("work_group_id", workGroupID),
	)
}
