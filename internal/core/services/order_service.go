package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/renohub/reno_backend/internal/apperrors"
	"github.com/renohub/reno_backend/internal/core/domain"
	portsrepo "github.com/renohub/reno_backend/internal/core/ports/repositories"
	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/dto"
	"github.com/renohub/reno_backend/internal/middleware"
	"github.com/renohub/reno_backend/internal/utils"
)

var (
	ErrAreaRequired      = errors.New("gangmaster orders require a positive renovation area")
	ErrSelfAccept        = errors.New("requester cannot accept their own order")
	ErrDerivedAccept     = errors.New("derived orders are accepted at assignment, not directly")
	ErrNotQualifyingItem = errors.New("single-item acceptance is limited to qualifying main-group items")
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// gangmasterAdvanceRate is the share of the coordination fee released per
// accepted qualifying item before the whole order completes.
var gangmasterAdvanceRate = decimal.NewFromFloat(0.25)

// orderService drives the order state machine and orchestrates item flags,
// fee computation and wallet movements on payment and acceptance events.
// Every mutating operation runs in one transaction with the order row locked
// first, so concurrent calls against the same order serialize and the
// idempotency guards cannot be raced past.
type orderService struct {
	orderRepo    portsrepo.OrderRepositoryWithTx
	workItemRepo portsrepo.WorkItemRepositoryFacade
	workItemSvc  portssvc.WorkItemSvcFacade
	walletSvc    portssvc.WalletSvcFacade
	notifier     portssvc.NotifierSvc
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo portsrepo.OrderRepositoryWithTx, workItemRepo portsrepo.WorkItemRepositoryFacade, workItemSvc portssvc.WorkItemSvcFacade, walletSvc portssvc.WalletSvcFacade, notifier portssvc.NotifierSvc) portssvc.OrderSvcFacade {
	return &orderService{
		orderRepo:    orderRepo,
		workItemRepo: workItemRepo,
		workItemSvc:  workItemSvc,
		walletSvc:    walletSvc,
		notifier:     notifier,
	}
}

var _ portssvc.OrderSvcFacade = (*orderService)(nil)

func (s *orderService) GetOrder(ctx context.Context, orderID string, withItems bool) (*domain.Order, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if withItems {
		items, err := s.workItemRepo.FindItemsByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		order.WorkItems = items
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string, params dto.ListOrdersParams) (*dto.ListOrdersResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultOrderPageSize
	}
	if limit > maxOrderPageSize {
		limit = maxOrderPageSize
	}

	orders, nextToken, err := s.orderRepo.ListOrdersByUser(ctx, userID, limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListOrdersResponse{
		Orders:    make([]dto.OrderResponse, len(orders)),
		NextToken: nextToken,
	}
	for i := range orders {
		resp.Orders[i] = dto.ToOrderResponse(&orders[i])
	}
	return resp, nil
}

// CreateOrder places a new pending order for the requester.
func (s *orderService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest, requesterID string) (*domain.Order, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	orderType := domain.OrderType(req.OrderType)
	switch orderType {
	case domain.OrderTypeCraftsman, domain.OrderTypeGangmaster:
	default:
		return nil, fmt.Errorf("%w: unknown order type %q", apperrors.ErrValidation, req.OrderType)
	}
	if orderType == domain.OrderTypeGangmaster && req.Area.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAreaRequired)
	}

	now := time.Now().UTC()
	orderNo, err := utils.GenerateOrderNo(now)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate order number", err)
	}

	order := domain.Order{
		OrderID:            uuid.NewString(),
		OrderNo:            orderNo,
		OrderType:          orderType,
		Status:             domain.OrderStatusPending,
		RequesterID:        requesterID,
		Address:            req.Address,
		Description:        req.Description,
		Area:               req.Area,
		TotalPrice:         decimal.Zero,
		TotalServiceFee:    decimal.Zero,
		GangmasterCost:     decimal.Zero,
		GangmasterPaid:     decimal.Zero,
		VisitingServiceNum: 0,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requesterID,
			LastUpdatedAt: now,
			LastUpdatedBy: requesterID,
		},
	}

	if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
		logger.Error("Failed to save order", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Order created", slog.String("order_id", order.OrderID), slog.String("order_no", order.OrderNo), slog.String("order_type", string(orderType)))
	return &order, nil
}

// AcceptOrder moves a pending order to accepted and records the executing
// craftsman.
func (s *orderService) AcceptOrder(ctx context.Context, orderID, craftsmanID string) (*domain.Order, error) {
	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.orderRepo.Rollback(ctx, tx)

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsDerived() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrDerivedAccept)
	}
	if !order.CanTransitionTo(domain.OrderStatusAccepted) {
		return nil, fmt.Errorf("%w: cannot accept order in status %s", apperrors.ErrInvalidState, order.Status)
	}
	if order.RequesterID == craftsmanID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSelfAccept)
	}

	now := time.Now().UTC()
	if err := s.orderRepo.UpdateOrderStatusInTx(ctx, tx, orderID, domain.OrderStatusAccepted, &craftsmanID, craftsmanID, now); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusAccepted
	order.CraftsmanID = &craftsmanID
	order.LastUpdatedAt = now
	order.LastUpdatedBy = craftsmanID

	s.notifier.NotifyOrderAccepted(ctx, order)
	return order, nil
}

// AddWorkPrices adds a price group to an accepted order: the main group
// first, later batches become sub groups.
func (s *orderService) AddWorkPrices(ctx context.Context, orderID string, req dto.AddWorkPricesRequest, craftsmanID string) (*domain.Order, error) {
	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.orderRepo.Rollback(ctx, tx)

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusAccepted {
		return nil, fmt.Errorf("%w: work prices can only be added in status %s, order is %s", apperrors.ErrInvalidState, domain.OrderStatusAccepted, order.Status)
	}
	if order.CraftsmanID == nil || *order.CraftsmanID != craftsmanID {
		return nil, fmt.Errorf("%w: only the executing craftsman may add work prices", apperrors.ErrForbidden)
	}

	order.WorkItems, err = s.workItemRepo.FindItemsByOrderIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	created, err := s.workItemSvc.CreateGroupInTx(ctx, tx, order, req.Items, craftsmanID)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.notifier.NotifyWorkPricesAdded(ctx, order, created[0].WorkGroupID)
	return order, nil
}

// ConfirmPayment flips is_paid for every item of the selected group. It is
// invoked only after the payment gateway has confirmed the money arrived
// platform-side; a webhook replay fails the ErrAlreadyDone guard harmlessly.
func (s *orderService) ConfirmPayment(ctx context.Context, orderID string, sel domain.WorkGroupSelector, requesterID string) error {
	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.orderRepo.Rollback(ctx, tx)

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusAccepted {
		return fmt.Errorf("%w: payment can only be confirmed in status %s, order is %s", apperrors.ErrInvalidState, domain.OrderStatusAccepted, order.Status)
	}
	if order.RequesterID != requesterID {
		return fmt.Errorf("%w: only the requester may confirm payment", apperrors.ErrForbidden)
	}

	items, err := s.workItemRepo.FindItemsByOrderIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	group, err := s.workItemSvc.SelectGroup(items, sel)
	if err != nil {
		return err
	}
	if err := s.workItemSvc.MarkPaidInTx(ctx, tx, group, requesterID); err != nil {
		return err
	}

	// The main group's service fee lives on the order, so its paid flag flips
	// here; sub-group fees are flipped per item by the repository.
	if sel.Main {
		order.WorkItems = items
		order.TotalServiceFeePaid = true
		order.LastUpdatedAt = time.Now().UTC()
		order.LastUpdatedBy = requesterID
		if err := s.orderRepo.UpdateOrderFinancialsInTx(ctx, tx, *order); err != nil {
			return err
		}
	}

	return s.orderRepo.Commit(ctx, tx)
}

// AcceptWorkGroup accepts a paid group and settles it.
//
// Sub groups pay out their full settlement total and, on a plain order,
// never complete it. A plain main group (craftsman order, derived sub-order,
// or a gangmaster order without a qualifying trade) pays out the construction
// cost and completes the order directly. A gangmaster order with qualifying
// trades pays no construction cost here; it completes on whichever group
// acceptance flips its last item, releasing the coordination-fee remainder.
func (s *orderService) AcceptWorkGroup(ctx context.Context, orderID string, sel domain.WorkGroupSelector, requesterID string) (*domain.Order, error) {
	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.orderRepo.Rollback(ctx, tx)

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusAccepted {
		return nil, fmt.Errorf("%w: acceptance is only possible in status %s, order is %s", apperrors.ErrInvalidState, domain.OrderStatusAccepted, order.Status)
	}
	if order.RequesterID != requesterID {
		return nil, fmt.Errorf("%w: only the requester may accept work", apperrors.ErrForbidden)
	}

	order.WorkItems, err = s.workItemRepo.FindItemsByOrderIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	group, err := s.workItemSvc.SelectGroup(order.WorkItems, sel)
	if err != nil {
		return nil, err
	}

	for _, item := range group {
		if !item.IsPaid {
			return nil, fmt.Errorf("%w: item %s in the selected group is unpaid", apperrors.ErrNotPaid, item.ItemID)
		}
	}

	// Qualifying items of a gangmaster main group may already be accepted
	// through the single-item path; whole-group acceptance covers the rest.
	// A fully accepted group trips the idempotency guard.
	var unaccepted []domain.WorkPriceItem
	for _, item := range group {
		if !item.IsAccepted {
			unaccepted = append(unaccepted, item)
		}
	}
	if len(unaccepted) == 0 {
		return nil, fmt.Errorf("%w: the selected group is already accepted", apperrors.ErrAlreadyDone)
	}
	if err := s.workItemSvc.MarkAcceptedInTx(ctx, tx, unaccepted, requesterID); err != nil {
		return nil, err
	}
	markLocalAccepted(order.WorkItems, unaccepted)

	now := time.Now().UTC()
	var completed []*domain.Order

	switch {
	case !sel.Main:
		// Sub group: pay out its full total. Plain orders complete through
		// their main group only, but a gangmaster order completes on whichever
		// acceptance flips its last item, and that can be a sub-group item.
		subTotal := decimal.Zero
		for _, item := range group {
			subTotal = subTotal.Add(item.SettlementAmount)
		}
		if err := s.walletSvc.CreditInTx(ctx, tx, *order.CraftsmanID, subTotal, "sub group settlement payout", &order.OrderID); err != nil {
			return nil, err
		}

		if s.isGangmasterSettlement(order) && s.workItemSvc.IsComplete(order.WorkItems) {
			if err := s.completeOrderInTx(ctx, tx, order, requesterID, now); err != nil {
				return nil, err
			}
			completed = append(completed, order)
		}

	case s.isGangmasterSettlement(order):
		if s.workItemSvc.IsComplete(order.WorkItems) {
			if err := s.completeOrderInTx(ctx, tx, order, requesterID, now); err != nil {
				return nil, err
			}
			completed = append(completed, order)
		}

	default:
		// Plain main group: pay out the construction cost and complete.
		mainTotal := decimal.Zero
		for _, item := range group {
			mainTotal = mainTotal.Add(item.SettlementAmount)
		}
		if err := s.walletSvc.CreditInTx(ctx, tx, *order.CraftsmanID, mainTotal, "construction cost payout", &order.OrderID); err != nil {
			return nil, err
		}

		if order.IsDerived() {
			parent, err := s.syncParentAcceptance(ctx, tx, order, unaccepted, requesterID, now)
			if err != nil {
				return nil, err
			}
			if parent != nil {
				completed = append(completed, parent)
			}
		}

		if err := s.completeOrderInTx(ctx, tx, order, requesterID, now); err != nil {
			return nil, err
		}
		completed = append(completed, order)
	}

	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	for _, done := range completed {
		s.notifier.NotifyOrderCompleted(ctx, done)
	}
	return order, nil
}

// AcceptWorkItem accepts one qualifying main-group item of a gangmaster
// order, releasing 25% of the coordination fee as an advance.
func (s *orderService) AcceptWorkItem(ctx context.Context, orderID, itemID string, requesterID string) (*domain.Order, error) {
	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.orderRepo.Rollback(ctx, tx)

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusAccepted {
		return nil, fmt.Errorf("%w: acceptance is only possible in status %s, order is %s", apperrors.ErrInvalidState, domain.OrderStatusAccepted, order.Status)
	}
	if order.RequesterID != requesterID {
		return nil, fmt.Errorf("%w: only the requester may accept work", apperrors.ErrForbidden)
	}
	if !s.isGangmasterSettlement(order) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNotQualifyingItem)
	}

	order.WorkItems, err = s.workItemRepo.FindItemsByOrderIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	var target *domain.WorkPriceItem
	for i := range order.WorkItems {
		if order.WorkItems[i].ItemID == itemID {
			target = &order.WorkItems[i]
			break
		}
	}
	if target == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("work item %s not found in order %s", itemID, orderID))
	}
	if !target.IsMainGroup() || !target.WorkKind.IsQualifying() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNotQualifyingItem)
	}
	if !target.IsPaid {
		return nil, fmt.Errorf("%w: item %s is unpaid", apperrors.ErrNotPaid, itemID)
	}

	if err := s.workItemSvc.MarkAcceptedInTx(ctx, tx, []domain.WorkPriceItem{*target}, requesterID); err != nil {
		return nil, err
	}
	target.IsAccepted = true

	now := time.Now().UTC()

	// Release the 25% advance, capped so the lifetime advances never exceed
	// the gross coordination fee.
	advance := order.GangmasterCost.Mul(gangmasterAdvanceRate).Round(2)
	if remaining := order.GangmasterCost.Sub(order.GangmasterPaid); advance.GreaterThan(remaining) {
		advance = remaining
	}
	if advance.GreaterThan(decimal.Zero) {
		if err := s.walletSvc.CreditInTx(ctx, tx, *order.CraftsmanID, advance, "gangmaster fee advance", &order.OrderID); err != nil {
			return nil, err
		}
		order.GangmasterPaid = order.GangmasterPaid.Add(advance)
		order.LastUpdatedAt = now
		order.LastUpdatedBy = requesterID
		if err := s.orderRepo.UpdateOrderFinancialsInTx(ctx, tx, *order); err != nil {
			return nil, err
		}
	}

	var completedOrder bool
	if s.workItemSvc.IsComplete(order.WorkItems) {
		if err := s.completeOrderInTx(ctx, tx, order, requesterID, now); err != nil {
			return nil, err
		}
		completedOrder = true
	}

	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	if completedOrder {
		s.notifier.NotifyOrderCompleted(ctx, order)
	}
	return order, nil
}

// CancelOrder cancels a pending or accepted order. Money already moved stays
// moved; reversal is handled by maintenance tooling, not this engine.
func (s *orderService) CancelOrder(ctx context.Context, orderID string, requesterID string) error {
	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.orderRepo.Rollback(ctx, tx)

	order, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order.RequesterID != requesterID {
		return fmt.Errorf("%w: only the requester may cancel the order", apperrors.ErrForbidden)
	}
	if !order.CanTransitionTo(domain.OrderStatusCancelled) {
		return fmt.Errorf("%w: cannot cancel order in status %s", apperrors.ErrInvalidState, order.Status)
	}

	now := time.Now().UTC()
	if err := s.orderRepo.UpdateOrderStatusInTx(ctx, tx, orderID, domain.OrderStatusCancelled, order.CraftsmanID, requesterID, now); err != nil {
		return err
	}
	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Order cancelled", slog.String("order_id", orderID))
	return nil
}

// isGangmasterSettlement reports whether the order settles through the
// coordination-fee path: a non-derived gangmaster order whose main group
// earned a fee (i.e. contains a qualifying trade).
func (s *orderService) isGangmasterSettlement(order *domain.Order) bool {
	return order.OrderType == domain.OrderTypeGangmaster && !order.IsDerived() && order.GangmasterCost.GreaterThan(decimal.Zero)
}

// syncParentAcceptance propagates a derived order's item acceptances back to
// the source items in the parent gangmaster order, then completes the parent
// if that made its last item accepted. Returns the parent when it completed.
func (s *orderService) syncParentAcceptance(ctx context.Context, tx pgx.Tx, child *domain.Order, acceptedClones []domain.WorkPriceItem, actorID string, now time.Time) (*domain.Order, error) {
	parent, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, *child.ParentOrderID)
	if err != nil {
		return nil, err
	}
	parent.WorkItems, err = s.workItemRepo.FindItemsByOrderIDForUpdate(ctx, tx, parent.OrderID)
	if err != nil {
		return nil, err
	}

	sourceIDs := make(map[string]bool, len(acceptedClones))
	for _, clone := range acceptedClones {
		if clone.SourceItemID != nil {
			sourceIDs[*clone.SourceItemID] = true
		}
	}

	var toAccept []domain.WorkPriceItem
	for _, item := range parent.WorkItems {
		if sourceIDs[item.ItemID] && !item.IsAccepted {
			toAccept = append(toAccept, item)
		}
	}
	if len(toAccept) > 0 {
		if err := s.workItemSvc.MarkAcceptedInTx(ctx, tx, toAccept, actorID); err != nil {
			return nil, err
		}
		markLocalAccepted(parent.WorkItems, toAccept)
	}

	if parent.Status == domain.OrderStatusAccepted && s.workItemSvc.IsComplete(parent.WorkItems) {
		if err := s.completeOrderInTx(ctx, tx, parent, actorID, now); err != nil {
			return nil, err
		}
		return parent, nil
	}
	return nil, nil
}

// completeOrderInTx applies the transition into Completed together with its
// side effects: the coordination-fee remainder for gangmaster orders and the
// deposit freeze. The freeze is skipped, not queued, when the balance is
// short; the acceptance that triggered completion still succeeds.
func (s *orderService) completeOrderInTx(ctx context.Context, tx pgx.Tx, order *domain.Order, actorID string, now time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	deposit := domain.CraftsmanDeposit
	if order.OrderType == domain.OrderTypeGangmaster && !order.IsDerived() {
		deposit = domain.GangmasterDeposit

		if remainder := order.GangmasterCost.Sub(order.GangmasterPaid); remainder.GreaterThan(decimal.Zero) {
			if err := s.walletSvc.CreditInTx(ctx, tx, *order.CraftsmanID, remainder, "gangmaster fee final payout", &order.OrderID); err != nil {
				return err
			}
			order.GangmasterPaid = order.GangmasterCost
			order.LastUpdatedAt = now
			order.LastUpdatedBy = actorID
			if err := s.orderRepo.UpdateOrderFinancialsInTx(ctx, tx, *order); err != nil {
				return err
			}
		}
	}

	err := s.walletSvc.FreezeInTx(ctx, tx, *order.CraftsmanID, deposit, "completion deposit", &order.OrderID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientBalance) {
			return err
		}
		logger.Warn("Deposit freeze skipped, balance insufficient",
			slog.String("order_id", order.OrderID),
			slog.String("craftsman_id", *order.CraftsmanID),
			slog.String("deposit", deposit.String()),
		)
	}

	if err := s.orderRepo.UpdateOrderStatusInTx(ctx, tx, order.OrderID, domain.OrderStatusCompleted, order.CraftsmanID, actorID, now); err != nil {
		return err
	}
	order.Status = domain.OrderStatusCompleted
	order.LastUpdatedAt = now
	order.LastUpdatedBy = actorID

	logger.Info("Order completed", slog.String("order_id", order.OrderID), slog.String("order_no", order.OrderNo))
	return nil
}

// markLocalAccepted keeps the in-memory projection aligned with the rows just
// flipped, so completion checks in the same transaction see them.
func markLocalAccepted(items []domain.WorkPriceItem, accepted []domain.WorkPriceItem) {
	acceptedIDs := make(map[string]bool, len(accepted))
	for _, item := range accepted {
		acceptedIDs[item.ItemID] = true
	}
	for i := range items {
		if acceptedIDs[items[i].ItemID] {
			items[i].IsAccepted = true
		}
	}
}
