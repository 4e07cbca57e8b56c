package services

import (
	"context"

	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/renohub/reno_backend/internal/dto"
)

// AssignmentSvcFacade splits a gangmaster order's work among subcontracted
// craftsmen by cloning items into one derived sub-order per craftsman while
// keeping the originals in the parent for audit.
type AssignmentSvcFacade interface {
	// AssignWorkItems clones the given unassigned, group-homogeneous items of
	// the parent order into the craftsman's derived order (creating it in
	// Accepted state if needed) and marks the originals assigned. Returns the
	// derived order with its items.
	AssignWorkItems(ctx context.Context, parentOrderID string, req dto.AssignWorkItemsRequest, actorID string) (*domain.Order, error)
}
