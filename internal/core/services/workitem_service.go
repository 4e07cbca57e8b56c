package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/renohub/reno_backend/internal/apperrors"
	"github.com/renohub/reno_backend/internal/core/domain"
	portsrepo "github.com/renohub/reno_backend/internal/core/ports/repositories"
	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/dto"
	"github.com/renohub/reno_backend/internal/utils/fees"
)

var (
	ErrEmptyItemBatch  = errors.New("work price batch must contain at least one item")
	ErrUnknownWorkKind = errors.New("unknown work kind")
)

// workItemService owns work price item records and the order's derived
// financial projection. The projection is recomputed inside the same
// transaction as every item mutation, never cached independently.
type workItemService struct {
	workItemRepo portsrepo.WorkItemRepositoryFacade
	orderRepo    portsrepo.OrderRepositoryFacade
}

// NewWorkItemService creates a new WorkItemService.
func NewWorkItemService(workItemRepo portsrepo.WorkItemRepositoryFacade, orderRepo portsrepo.OrderRepositoryFacade) portssvc.WorkItemSvcFacade {
	return &workItemService{workItemRepo: workItemRepo, orderRepo: orderRepo}
}

var _ portssvc.WorkItemSvcFacade = (*workItemService)(nil)

func parseWorkKind(kind string) (domain.WorkKind, error) {
	switch k := domain.WorkKind(kind); k {
	case domain.WorkKindPlumbingElectrical, domain.WorkKindMasonry, domain.WorkKindCarpentry,
		domain.WorkKindPainting, domain.WorkKindTiling, domain.WorkKindOther:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWorkKind, kind)
	}
}

// CreateGroupInTx creates a new price group for the order and recomputes the
// order's financial projection. The first batch becomes the main group; later
// batches become sub groups numbered max+1.
func (s *workItemService) CreateGroupInTx(ctx context.Context, tx pgx.Tx, order *domain.Order, inputs []dto.WorkPriceItemInput, actorID string) ([]domain.WorkPriceItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrEmptyItemBatch)
	}

	groupID := domain.MainWorkGroupID
	for _, item := range order.WorkItems {
		if item.WorkGroupID >= groupID {
			groupID = item.WorkGroupID + 1
		}
	}

	now := time.Now().UTC()
	created := make([]domain.WorkPriceItem, len(inputs))
	for i, input := range inputs {
		kind, err := parseWorkKind(input.WorkKind)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		if input.WorkPrice.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: work price must be positive for item %q", apperrors.ErrValidation, input.Name)
		}
		if input.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: quantity must be positive for item %q", apperrors.ErrValidation, input.Name)
		}
		if input.IsSetMinimumPrice && input.MinimumPrice.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: minimum price must be positive for item %q", apperrors.ErrValidation, input.Name)
		}

		settlement := fees.SettlementAmount(input.WorkPrice, input.Quantity, input.MinimumPrice, input.IsSetMinimumPrice)
		item := domain.WorkPriceItem{
			ItemID:            uuid.NewString(),
			OrderID:           order.OrderID,
			WorkGroupID:       groupID,
			WorkKind:          kind,
			Name:              input.Name,
			WorkPrice:         input.WorkPrice,
			Quantity:          input.Quantity,
			MinimumPrice:      input.MinimumPrice,
			IsSetMinimumPrice: input.IsSetMinimumPrice,
			SettlementAmount:  settlement,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		// The main group's service fee lives on the order; sub-group items are
		// billed independently and carry their own fee.
		if groupID != domain.MainWorkGroupID {
			item.ServiceFee = fees.ServiceFee(settlement)
		}
		created[i] = item
	}

	if err := s.workItemRepo.SaveWorkItemsInTx(ctx, tx, created); err != nil {
		return nil, err
	}

	order.WorkItems = append(order.WorkItems, created...)
	s.recomputeFinancials(order)
	order.LastUpdatedAt = now
	order.LastUpdatedBy = actorID
	if err := s.orderRepo.UpdateOrderFinancialsInTx(ctx, tx, *order); err != nil {
		return nil, err
	}

	return created, nil
}

// recomputeFinancials rebuilds the order's denormalized money fields from its
// items. TotalPrice aggregates every item's settlement amount; the
// order-level service fee covers the main group only.
//
// A gangmaster order earns its coordination fee only when the main group
// contains a qualifying trade; the fee inputs are the renovation area and the
// construction cost of the qualifying items. The fee itself is not taxed, so
// the service fee is 10% of construction cost. A gangmaster order without a
// qualifying trade behaves like a plain craftsman order.
func (s *workItemService) recomputeFinancials(order *domain.Order) {
	total := decimal.Zero
	mainTotal := decimal.Zero
	qualifyingCost := decimal.Zero
	for _, item := range order.WorkItems {
		total = total.Add(item.SettlementAmount)
		if item.IsMainGroup() {
			mainTotal = mainTotal.Add(item.SettlementAmount)
			if item.WorkKind.IsQualifying() {
				qualifyingCost = qualifyingCost.Add(item.SettlementAmount)
			}
		}
	}

	order.TotalPrice = total
	if order.OrderType == domain.OrderTypeGangmaster && !order.IsDerived() && qualifyingCost.GreaterThan(decimal.Zero) {
		fee, visits := fees.GangmasterFee(order.Area, qualifyingCost)
		order.GangmasterCost = fee
		order.VisitingServiceNum = visits
		order.TotalServiceFee = fees.ServiceFee(qualifyingCost)
	} else {
		order.GangmasterCost = decimal.Zero
		order.VisitingServiceNum = 0
		order.TotalServiceFee = fees.ServiceFee(mainTotal)
	}
}

// MarkPaidInTx flips is_paid on the given items. The flag is monotonic:
// re-paying fails with ErrAlreadyDone so a gateway replay can never
// double-apply.
func (s *workItemService) MarkPaidInTx(ctx context.Context, tx pgx.Tx, items []domain.WorkPriceItem, actorID string) error {
	itemIDs := make([]string, len(items))
	for i, item := range items {
		if item.IsPaid {
			return fmt.Errorf("%w: item %s is already paid", apperrors.ErrAlreadyDone, item.ItemID)
		}
		itemIDs[i] = item.ItemID
	}
	return s.workItemRepo.MarkItemsPaidInTx(ctx, tx, itemIDs, actorID, time.Now().UTC())
}

// MarkAcceptedInTx flips is_accepted on the given items, guarded the same way
// as MarkPaidInTx.
func (s *workItemService) MarkAcceptedInTx(ctx context.Context, tx pgx.Tx, items []domain.WorkPriceItem, actorID string) error {
	itemIDs := make([]string, len(items))
	for i, item := range items {
		if item.IsAccepted {
			return fmt.Errorf("%w: item %s is already accepted", apperrors.ErrAlreadyDone, item.ItemID)
		}
		itemIDs[i] = item.ItemID
	}
	return s.workItemRepo.MarkItemsAcceptedInTx(ctx, tx, itemIDs, actorID, time.Now().UTC())
}

// SelectGroup picks the addressed group's items out of an order's item set.
func (s *workItemService) SelectGroup(items []domain.WorkPriceItem, sel domain.WorkGroupSelector) ([]domain.WorkPriceItem, error) {
	if sel.Main {
		var group []domain.WorkPriceItem
		for _, item := range items {
			if item.IsMainGroup() {
				group = append(group, item)
			}
		}
		if len(group) == 0 {
			return nil, fmt.Errorf("%w: order has no main group", apperrors.ErrValidation)
		}
		return group, nil
	}

	if sel.SubOrdinal < 0 {
		return nil, fmt.Errorf("%w: sub group ordinal must not be negative", apperrors.ErrValidation)
	}

	byGroup := make(map[int][]domain.WorkPriceItem)
	for _, item := range items {
		if !item.IsMainGroup() {
			byGroup[item.WorkGroupID] = append(byGroup[item.WorkGroupID], item)
		}
	}
	groupIDs := make([]int, 0, len(byGroup))
	for id := range byGroup {
		groupIDs = append(groupIDs, id)
	}
	sort.Ints(groupIDs)

	if sel.SubOrdinal >= len(groupIDs) {
		return nil, fmt.Errorf("%w: sub group ordinal %d out of range (%d sub groups)", apperrors.ErrValidation, sel.SubOrdinal, len(groupIDs))
	}
	return byGroup[groupIDs[sel.SubOrdinal]], nil
}

// IsComplete reports whether every item of the set is accepted. An empty set
// is never complete.
func (s *workItemService) IsComplete(items []domain.WorkPriceItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.IsAccepted {
			return false
		}
	}
	return true
}
