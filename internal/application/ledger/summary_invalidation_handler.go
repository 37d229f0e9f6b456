package ledger

import (
	"context"

	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
)

// SummaryInvalidationHandler drops the cached inventory summary whenever a
// ledger-affecting domain event is published. The summary is only ever
// invalidated explicitly through this handler; it is recomputed lazily on
// the next read.
type SummaryInvalidationHandler struct {
	cache SummaryCache
}

// NewSummaryInvalidationHandler creates a new SummaryInvalidationHandler
func NewSummaryInvalidationHandler(cache SummaryCache) *SummaryInvalidationHandler {
	return &SummaryInvalidationHandler{cache: cache}
}

// Handle invalidates the summary of the event's tenant
func (h *SummaryInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.cache.Invalidate(ctx, event.TenantID())
	return nil
}

// EventTypes returns the route lifecycle events that move inventory
func (h *SummaryInvalidationHandler) EventTypes() []string {
	return []string{
		route.EventTypeRouteCreated,
		route.EventTypeRouteCancelled,
		route.EventTypeRouteClosed,
		route.EventTypeDeliveryCompleted,
	}
}

var _ shared.EventHandler = (*SummaryInvalidationHandler)(nil)
