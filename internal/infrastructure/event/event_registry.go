package event

import (
	"github.com/fleet/backend/internal/domain/route"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Route lifecycle events
	serializer.Register(route.EventTypeRouteCreated, &route.RouteCreatedEvent{})
	serializer.Register(route.EventTypeRouteStarted, &route.RouteStartedEvent{})
	serializer.Register(route.EventTypeRouteFinished, &route.RouteFinishedEvent{})
	serializer.Register(route.EventTypeRouteClosed, &route.RouteClosedEvent{})
	serializer.Register(route.EventTypeRouteCancelled, &route.RouteCancelledEvent{})
	serializer.Register(route.EventTypeRouteFlagged, &route.RouteFlaggedEvent{})

	// Delivery execution events
	serializer.Register(route.EventTypeDeliveryCompleted, &route.DeliveryCompletedEvent{})
}
