package route

import (
	"context"

	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/fleet/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryService executes stops on an in-progress route. Completing a
// stop updates the delivery, debits the vehicle in the ledger and records
// the payment event in one transaction; the route row is locked for the
// duration so concurrent completions on the same route serialize.
type DeliveryService struct {
	scope            TransactionScope
	routeRepo        route.RouteRepository
	eventPublisher   shared.EventPublisher
	businessMetrics  *telemetry.BusinessMetrics
	unit             string
	overageTolerance decimal.Decimal
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(scope TransactionScope, routeRepo route.RouteRepository) *DeliveryService {
	return &DeliveryService{
		scope:            scope,
		routeRepo:        routeRepo,
		unit:             DefaultQuantityUnit,
		overageTolerance: decimal.Zero,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DeliveryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *DeliveryService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetQuantityUnit overrides the unit recorded on ledger movements
func (s *DeliveryService) SetQuantityUnit(unit string) {
	if unit != "" {
		s.unit = unit
	}
}

// SetOverageTolerance sets the fraction by which a delivered quantity may
// exceed the planned one. Zero (the default) rejects any overage.
func (s *DeliveryService) SetOverageTolerance(tolerance decimal.Decimal) {
	if !tolerance.IsNegative() {
		s.overageTolerance = tolerance
	}
}

// Complete records a fulfilled stop: the delivery is settled, the vehicle
// is debited by the delivered quantity and, when payment details are
// given, a payment event is appended. All of it commits atomically.
func (s *DeliveryService) Complete(ctx context.Context, tenantID, routeID, deliveryID uuid.UUID, req CompleteDeliveryRequest) (*DeliveryResponse, error) {
	var r *route.Route
	var completed *route.Delivery

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		r, err = repos.RouteRepo().FindByIDForUpdate(ctx, tenantID, routeID)
		if err != nil {
			return err
		}

		completed, err = r.CompleteDelivery(deliveryID, req.DeliveredQty, req.ReceiverName, s.overageTolerance)
		if err != nil {
			return err
		}

		if err := repos.RouteRepo().SaveDelivery(ctx, completed); err != nil {
			return err
		}

		movement, err := ledger.NewMovement(tenantID, ledger.VehicleLocation(r.VehicleID), ledger.MovementTypeTransferOut,
			req.DeliveredQty.Neg(), s.unit, ledger.ReferenceTypeDelivery, completed.ID)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}

		if req.Payment == nil {
			return nil
		}
		amount := completed.TotalAmount
		if req.Payment.Amount != nil {
			amount = *req.Payment.Amount
		}
		payment, err := route.NewPaymentEvent(tenantID, completed.ID,
			route.PaymentMethod(req.Payment.Method), amount, req.Payment.CollectedByDriver)
		if err != nil {
			return err
		}
		return repos.PaymentRepo().Append(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, r)

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordDeliveredQuantity(ctx, tenantID, req.DeliveredQty)
	}

	response := ToDeliveryResponse(completed)
	return &response, nil
}

// MarkIncident records a failed stop. The commodity stays on the vehicle,
// so no ledger movement is posted.
func (s *DeliveryService) MarkIncident(ctx context.Context, tenantID, routeID, deliveryID uuid.UUID, req DeliveryIncidentRequest) (*DeliveryResponse, error) {
	var marked *route.Delivery

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.RouteRepo().FindByIDForUpdate(ctx, tenantID, routeID)
		if err != nil {
			return err
		}

		marked, err = r.MarkDeliveryIncident(deliveryID, req.Reason)
		if err != nil {
			return err
		}
		return repos.RouteRepo().SaveDelivery(ctx, marked)
	})
	if err != nil {
		return nil, err
	}

	response := ToDeliveryResponse(marked)
	return &response, nil
}

// MarkNotDelivered records a stop the driver skipped
func (s *DeliveryService) MarkNotDelivered(ctx context.Context, tenantID, routeID, deliveryID uuid.UUID) (*DeliveryResponse, error) {
	var skipped *route.Delivery

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.RouteRepo().FindByIDForUpdate(ctx, tenantID, routeID)
		if err != nil {
			return err
		}

		skipped, err = r.MarkDeliveryNotDelivered(deliveryID)
		if err != nil {
			return err
		}
		return repos.RouteRepo().SaveDelivery(ctx, skipped)
	})
	if err != nil {
		return nil, err
	}

	response := ToDeliveryResponse(skipped)
	return &response, nil
}

// publishDomainEvents publishes all pending domain events from the route
func (s *DeliveryService) publishDomainEvents(ctx context.Context, r *route.Route) {
	if s.eventPublisher == nil || r == nil {
		return
	}
	events := r.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	r.ClearDomainEvents()
}
