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
	"github.com/renohub/reno_backend/internal/utils/fees"
)

var (
	ErrNotGangmasterOrder = errors.New("only gangmaster orders can be assigned")
	ErrMixedGroups        = errors.New("assigned items must be all main-group or all sub-group")
	ErrItemAssigned       = errors.New("item is already assigned to a craftsman")
	ErrSelfAssign         = errors.New("gangmaster cannot assign work to themselves")
)

// assignmentService splits a gangmaster order's work among subcontracted
// craftsmen. Originals stay in the parent order for audit; each craftsman
// accumulates their clones in a single derived sub-order per parent.
type assignmentService struct {
	orderRepo    portsrepo.OrderRepositoryWithTx
	workItemRepo portsrepo.WorkItemRepositoryFacade
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(orderRepo portsrepo.OrderRepositoryWithTx, workItemRepo portsrepo.WorkItemRepositoryFacade) portssvc.AssignmentSvcFacade {
	return &assignmentService{orderRepo: orderRepo, workItemRepo: workItemRepo}
}

var _ portssvc.AssignmentSvcFacade = (*assignmentService)(nil)

// AssignWorkItems clones the given parent items into the craftsman's derived
// order and marks the originals assigned, all in one transaction.
func (s *assignmentService) AssignWorkItems(ctx context.Context, parentOrderID string, req dto.AssignWorkItemsRequest, actorID string) (*domain.Order, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.orderRepo.Rollback(ctx, tx)

	// The derived order row is locked before the parent row, the same
	// child-then-parent order the acceptance path takes, so a concurrent
	// assignment and derived-order acceptance cannot deadlock on the pair.
	derived, err := s.orderRepo.FindDerivedOrderForUpdate(ctx, tx, parentOrderID, req.CraftsmanID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		derived = nil
	}

	parent, err := s.orderRepo.FindOrderByIDForUpdate(ctx, tx, parentOrderID)
	if err != nil {
		return nil, err
	}
	if parent.OrderType != domain.OrderTypeGangmaster || parent.IsDerived() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNotGangmasterOrder)
	}
	if parent.Status != domain.OrderStatusAccepted {
		return nil, fmt.Errorf("%w: assignment is only possible in status %s, order is %s", apperrors.ErrInvalidState, domain.OrderStatusAccepted, parent.Status)
	}
	if parent.CraftsmanID == nil || *parent.CraftsmanID != actorID {
		return nil, fmt.Errorf("%w: only the gangmaster may assign work", apperrors.ErrForbidden)
	}
	if req.CraftsmanID == actorID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSelfAssign)
	}

	parentItems, err := s.workItemRepo.FindItemsByOrderIDForUpdate(ctx, tx, parentOrderID)
	if err != nil {
		return nil, err
	}

	sources, err := pickAssignableItems(parentItems, req.ItemIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if derived == nil {
		derived, err = s.createDerivedOrder(ctx, tx, parent, req.CraftsmanID, actorID, now)
		if err != nil {
			return nil, err
		}
	}
	derived.WorkItems, err = s.workItemRepo.FindItemsByOrderIDForUpdate(ctx, tx, derived.OrderID)
	if err != nil {
		return nil, err
	}

	// Clone each source into the derived order as a main-group item with
	// independent flags but the same settlement amount.
	clones := make([]domain.WorkPriceItem, len(sources))
	sourceIDs := make([]string, len(sources))
	for i, src := range sources {
		srcID := src.ItemID
		clones[i] = domain.WorkPriceItem{
			ItemID:            uuid.NewString(),
			OrderID:           derived.OrderID,
			WorkGroupID:       domain.MainWorkGroupID,
			WorkKind:          src.WorkKind,
			Name:              src.Name,
			WorkPrice:         src.WorkPrice,
			Quantity:          src.Quantity,
			MinimumPrice:      src.MinimumPrice,
			IsSetMinimumPrice: src.IsSetMinimumPrice,
			SettlementAmount:  src.SettlementAmount,
			ServiceFee:        decimal.Zero,
			SourceItemID:      &srcID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		sourceIDs[i] = srcID
	}
	if err := s.workItemRepo.SaveWorkItemsInTx(ctx, tx, clones); err != nil {
		return nil, err
	}
	if err := s.workItemRepo.SetAssignedCraftsmanInTx(ctx, tx, sourceIDs, req.CraftsmanID, actorID, now); err != nil {
		return nil, err
	}

	// No gangmaster fee on derived orders: their service fee is a flat 10% of
	// the settlement total.
	derived.WorkItems = append(derived.WorkItems, clones...)
	total := decimal.Zero
	for _, item := range derived.WorkItems {
		total = total.Add(item.SettlementAmount)
	}
	derived.TotalPrice = total
	derived.TotalServiceFee = fees.ServiceFee(total)
	derived.LastUpdatedAt = now
	derived.LastUpdatedBy = actorID
	if err := s.orderRepo.UpdateOrderFinancialsInTx(ctx, tx, *derived); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Work items assigned",
		slog.String("parent_order_id", parentOrderID),
		slog.String("derived_order_id", derived.OrderID),
		slog.String("craftsman_id", req.CraftsmanID),
		slog.Int("item_count", len(sources)),
	)
	return derived, nil
}

// pickAssignableItems resolves the requested item IDs against the parent's
// items and enforces the assignment preconditions: all items exist in the
// parent, none is already assigned, and the batch is group-homogeneous.
func pickAssignableItems(parentItems []domain.WorkPriceItem, itemIDs []string) ([]domain.WorkPriceItem, error) {
	byID := make(map[string]domain.WorkPriceItem, len(parentItems))
	for _, item := range parentItems {
		byID[item.ItemID] = item
	}

	sources := make([]domain.WorkPriceItem, 0, len(itemIDs))
	mainCount := 0
	for _, id := range itemIDs {
		item, ok := byID[id]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("work item %s not found in parent order", id))
		}
		if item.AssignedCraftsmanID != nil {
			return nil, fmt.Errorf("%w: %s (item %s)", apperrors.ErrValidation, ErrItemAssigned, id)
		}
		if item.IsMainGroup() {
			mainCount++
		}
		sources = append(sources, item)
	}
	if mainCount != 0 && mainCount != len(sources) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrMixedGroups)
	}
	return sources, nil
}

// createDerivedOrder creates the single derived sub-order for the
// (parent, craftsman) pair, directly in Accepted, for the craftsman's first
// assignment from this parent.
func (s *assignmentService) createDerivedOrder(ctx context.Context, tx pgx.Tx, parent *domain.Order, craftsmanID, actorID string, now time.Time) (*domain.Order, error) {
	orderNo, err := utils.GenerateOrderNo(now)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate order number", err)
	}

	parentID := parent.OrderID
	assignee := craftsmanID
	order := domain.Order{
		OrderID:         uuid.NewString(),
		OrderNo:         orderNo,
		OrderType:       domain.OrderTypeCraftsman,
		Status:          domain.OrderStatusAccepted,
		ParentOrderID:   &parentID,
		RequesterID:     actorID, // the gangmaster requests the subcontracted work
		CraftsmanID:     &assignee,
		Address:         parent.Address,
		Description:     parent.Description,
		Area:            decimal.Zero,
		TotalPrice:      decimal.Zero,
		TotalServiceFee: decimal.Zero,
		GangmasterCost:  decimal.Zero,
		GangmasterPaid:  decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if err := s.orderRepo.SaveOrderInTx(ctx, tx, order); err != nil {
		return nil, err
	}
	return &order, nil
}
