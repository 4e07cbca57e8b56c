package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/renohub/reno_backend/internal/dto"
)

// WorkItemSvcFacade owns work price item records: batch creation with group
// assignment, paid/accepted flag transitions and the derived order
// projection. All mutating methods run inside the caller's transaction so the
// order lifecycle can compose them atomically with wallet movements.
type WorkItemSvcFacade interface {
	// CreateGroupInTx creates a new price group for the order: the main group
	// when the order has none, otherwise the next sub group. It derives every
	// item's settlement amount, computes the gangmaster fee for qualifying
	// main groups, recomputes the order's financial projection and persists
	// both. The mutated order is written back to *order.
	CreateGroupInTx(ctx context.Context, tx pgx.Tx, order *domain.Order, inputs []dto.WorkPriceItemInput, actorID string) ([]domain.WorkPriceItem, error)

	// MarkPaidInTx flips is_paid on the given items, failing with
	// ErrAlreadyDone if any of them is already paid.
	MarkPaidInTx(ctx context.Context, tx pgx.Tx, items []domain.WorkPriceItem, actorID string) error

	// MarkAcceptedInTx flips is_accepted on the given items, failing with
	// ErrAlreadyDone if any of them is already accepted.
	MarkAcceptedInTx(ctx context.Context, tx pgx.Tx, items []domain.WorkPriceItem, actorID string) error

	// SelectGroup picks the items of the addressed group out of an order's
	// item set. Fails with ErrValidation when the group is empty or the
	// ordinal is out of range.
	SelectGroup(items []domain.WorkPriceItem, sel domain.WorkGroupSelector) ([]domain.WorkPriceItem, error)

	// IsComplete reports whether every item of the set is accepted. An empty
	// set is never complete.
	IsComplete(items []domain.WorkPriceItem) bool
}
