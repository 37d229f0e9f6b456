package route

import (
	"context"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RouteRepository defines the persistence interface for routes. Transitions
// are compare-and-set on status: SaveTransition must fail with a
// concurrency conflict when the stored status no longer matches the state
// the transition started from.
type RouteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Route, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Route, error)
	// FindByIDForUpdate loads the route with its row locked for the
	// remainder of the enclosing transaction. Used to serialize delivery
	// completions and reconciliation within a single route.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Route, error)
	FindByRouteNumber(ctx context.Context, tenantID uuid.UUID, routeNumber string) (*Route, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Route, error)
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]Route, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	CountOpenByPlant(ctx context.Context, tenantID, plantID uuid.UUID) (int64, error)
	CountOpenByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) (int64, error)

	// Save persists a new route together with its deliveries
	Save(ctx context.Context, route *Route) error
	// SaveTransition persists a lifecycle transition guarded by the status
	// the route held before the transition. Returns a concurrency conflict
	// when the guard fails.
	SaveTransition(ctx context.Context, route *Route, fromStatus RouteStatus) error
	// SaveDelivery persists a mutated delivery row
	SaveDelivery(ctx context.Context, delivery *Delivery) error

	// GenerateRouteNumber produces the next sequential route number for a
	// tenant (format RT-YYYY-NNNNN)
	GenerateRouteNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// PaymentEventRepository is the append-only persistence interface for
// payment events
type PaymentEventRepository interface {
	Append(ctx context.Context, event *PaymentEvent) error
	FindByDelivery(ctx context.Context, tenantID, deliveryID uuid.UUID) (*PaymentEvent, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PaymentEvent, error)
}
