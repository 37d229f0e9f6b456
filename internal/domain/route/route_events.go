package route

import (
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the route aggregate
const (
	EventTypeRouteCreated      = "route.created"
	EventTypeRouteStarted      = "route.started"
	EventTypeRouteFinished     = "route.finished"
	EventTypeRouteClosed       = "route.closed"
	EventTypeRouteCancelled    = "route.cancelled"
	EventTypeRouteFlagged      = "route.flagged"
	EventTypeDeliveryCompleted = "route.delivery_completed"
)

const aggregateTypeRoute = "Route"

// RouteCreatedEvent is published when a route is planned
type RouteCreatedEvent struct {
	shared.BaseDomainEvent
	RouteNumber string          `json:"route_number"`
	AssignedQty decimal.Decimal `json:"assigned_qty"`
	Stops       int             `json:"stops"`
}

// NewRouteCreatedEvent creates a RouteCreatedEvent
func NewRouteCreatedEvent(r *Route) *RouteCreatedEvent {
	return &RouteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRouteCreated, aggregateTypeRoute, r.ID, r.TenantID),
		RouteNumber:     r.RouteNumber,
		AssignedQty:     r.AssignedQty,
		Stops:           len(r.Deliveries),
	}
}

// RouteStartedEvent is published when a route enters IN_PROGRESS
type RouteStartedEvent struct {
	shared.BaseDomainEvent
	RouteNumber string `json:"route_number"`
}

// NewRouteStartedEvent creates a RouteStartedEvent
func NewRouteStartedEvent(r *Route) *RouteStartedEvent {
	return &RouteStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRouteStarted, aggregateTypeRoute, r.ID, r.TenantID),
		RouteNumber:     r.RouteNumber,
	}
}

// RouteFinishedEvent is published when a route enters PENDING_RETURN_REVIEW
type RouteFinishedEvent struct {
	shared.BaseDomainEvent
	RouteNumber       string          `json:"route_number"`
	ExpectedReturnQty decimal.Decimal `json:"expected_return_qty"`
}

// NewRouteFinishedEvent creates a RouteFinishedEvent
func NewRouteFinishedEvent(r *Route) *RouteFinishedEvent {
	expected := decimal.Zero
	if r.ExpectedReturnQty != nil {
		expected = *r.ExpectedReturnQty
	}
	return &RouteFinishedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeRouteFinished, aggregateTypeRoute, r.ID, r.TenantID),
		RouteNumber:       r.RouteNumber,
		ExpectedReturnQty: expected,
	}
}

// RouteClosedEvent is published when reconciliation closes a route
type RouteClosedEvent struct {
	shared.BaseDomainEvent
	RouteNumber     string          `json:"route_number"`
	ActualReturnQty decimal.Decimal `json:"actual_return_qty"`
	MermaQty        decimal.Decimal `json:"merma_qty"`
}

// NewRouteClosedEvent creates a RouteClosedEvent
func NewRouteClosedEvent(r *Route) *RouteClosedEvent {
	actual := decimal.Zero
	if r.ActualReturnQty != nil {
		actual = *r.ActualReturnQty
	}
	return &RouteClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRouteClosed, aggregateTypeRoute, r.ID, r.TenantID),
		RouteNumber:     r.RouteNumber,
		ActualReturnQty: actual,
		MermaQty:        r.MermaQty(),
	}
}

// RouteCancelledEvent is published when a route is cancelled
type RouteCancelledEvent struct {
	shared.BaseDomainEvent
	RouteNumber string `json:"route_number"`
	Reason      string `json:"reason"`
}

// NewRouteCancelledEvent creates a RouteCancelledEvent
func NewRouteCancelledEvent(r *Route) *RouteCancelledEvent {
	return &RouteCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRouteCancelled, aggregateTypeRoute, r.ID, r.TenantID),
		RouteNumber:     r.RouteNumber,
		Reason:          r.CancelReason,
	}
}

// RouteFlaggedEvent is published when a route is flagged into ALERT
type RouteFlaggedEvent struct {
	shared.BaseDomainEvent
	RouteNumber string `json:"route_number"`
	Reason      string `json:"reason"`
}

// NewRouteFlaggedEvent creates a RouteFlaggedEvent
func NewRouteFlaggedEvent(r *Route, reason string) *RouteFlaggedEvent {
	return &RouteFlaggedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRouteFlagged, aggregateTypeRoute, r.ID, r.TenantID),
		RouteNumber:     r.RouteNumber,
		Reason:          reason,
	}
}

// DeliveryCompletedEvent is published when a stop is fulfilled
type DeliveryCompletedEvent struct {
	shared.BaseDomainEvent
	RouteNumber  string          `json:"route_number"`
	DeliveryID   string          `json:"delivery_id"`
	DeliveredQty decimal.Decimal `json:"delivered_qty"`
}

// NewDeliveryCompletedEvent creates a DeliveryCompletedEvent
func NewDeliveryCompletedEvent(r *Route, d *Delivery) *DeliveryCompletedEvent {
	return &DeliveryCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeliveryCompleted, aggregateTypeRoute, r.ID, r.TenantID),
		RouteNumber:     r.RouteNumber,
		DeliveryID:      d.ID.String(),
		DeliveredQty:    d.DeliveredQty,
	}
}
