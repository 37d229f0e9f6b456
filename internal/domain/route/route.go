package route

import (
	"fmt"
	"time"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RouteStatus represents the lifecycle state of a delivery route
type RouteStatus string

const (
	RouteStatusPlanned             RouteStatus = "PLANNED"
	RouteStatusInProgress          RouteStatus = "IN_PROGRESS"
	RouteStatusPendingReturnReview RouteStatus = "PENDING_RETURN_REVIEW"
	RouteStatusClosed              RouteStatus = "CLOSED"
	RouteStatusAlert               RouteStatus = "ALERT"
	RouteStatusCancelled           RouteStatus = "CANCELLED"
)

// IsValid checks if the status is a valid RouteStatus
func (s RouteStatus) IsValid() bool {
	switch s {
	case RouteStatusPlanned, RouteStatusInProgress, RouteStatusPendingReturnReview,
		RouteStatusClosed, RouteStatusAlert, RouteStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RouteStatus
func (s RouteStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Any transition not enumerated here is forbidden.
func (s RouteStatus) CanTransitionTo(target RouteStatus) bool {
	switch s {
	case RouteStatusPlanned:
		return target == RouteStatusInProgress || target == RouteStatusCancelled
	case RouteStatusInProgress:
		return target == RouteStatusPendingReturnReview ||
			target == RouteStatusCancelled ||
			target == RouteStatusAlert
	case RouteStatusPendingReturnReview:
		return target == RouteStatusClosed
	case RouteStatusClosed, RouteStatusAlert, RouteStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no transition leaves this status
func (s RouteStatus) IsTerminal() bool {
	return s == RouteStatusClosed || s == RouteStatusAlert || s == RouteStatusCancelled
}

// Route represents a planned, time-boxed set of deliveries assigned to one
// vehicle loaded from one plant. It is the aggregate root for deliveries:
// all delivery mutations go through the route so that route-level quantity
// invariants can be enforced in one place.
//
// Quantity invariants held by the aggregate:
//   - the sum of delivered quantities never exceeds AssignedQty
//   - ExpectedReturnQty is computed once, at Finish, and never recomputed
//   - ActualReturnQty and the terminal CLOSED status are set exactly once
type Route struct {
	shared.TenantAggregateRoot
	RouteNumber       string     `gorm:"type:varchar(30);not null;index"`
	PlantID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	VehicleID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	DriverID          *uuid.UUID `gorm:"type:uuid;index"`
	Status            RouteStatus
	PlannedDate       time.Time
	StartedAt         *time.Time
	FinishedAt        *time.Time
	ClosedAt          *time.Time
	CancelledAt       *time.Time
	CancelReason      string
	AssignedQty       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpectedReturnQty *decimal.Decimal
	ActualReturnQty   *decimal.Decimal
	ReturnReviewedBy  *uuid.UUID
	ReturnReviewedAt  *time.Time
	Deliveries        []Delivery `gorm:"foreignKey:RouteID"`
}

// TableName returns the table name for GORM
func (Route) TableName() string {
	return "routes"
}

// NewRoute creates a new route in PLANNED status
func NewRoute(
	tenantID uuid.UUID,
	routeNumber string,
	plantID, vehicleID uuid.UUID,
	plannedDate time.Time,
	assignedQty decimal.Decimal,
) (*Route, error) {
	if routeNumber == "" {
		return nil, shared.NewValidationError("Route number cannot be empty")
	}
	if plantID == uuid.Nil {
		return nil, shared.NewValidationError("Plant ID cannot be empty")
	}
	if vehicleID == uuid.Nil {
		return nil, shared.NewValidationError("Vehicle ID cannot be empty")
	}
	if assignedQty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Assigned quantity must be positive")
	}

	r := &Route{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RouteNumber:         routeNumber,
		PlantID:             plantID,
		VehicleID:           vehicleID,
		Status:              RouteStatusPlanned,
		PlannedDate:         plannedDate,
		AssignedQty:         assignedQty,
		Deliveries:          make([]Delivery, 0),
	}

	r.AddDomainEvent(NewRouteCreatedEvent(r))

	return r, nil
}

// AssignDriver sets the driver for the route. Only allowed before the
// route starts.
func (r *Route) AssignDriver(driverID uuid.UUID) error {
	if r.Status != RouteStatusPlanned {
		return shared.NewInvalidStateError("Driver can only be assigned to a planned route")
	}
	if driverID == uuid.Nil {
		return shared.NewValidationError("Driver ID cannot be empty")
	}
	r.DriverID = &driverID
	r.UpdatedAt = time.Now()
	return nil
}

// AddDelivery plans a delivery stop on the route. Only allowed in PLANNED
// status; the planned quantities across all stops may not exceed the
// assigned quantity.
func (r *Route) AddDelivery(clientID uuid.UUID, clientName string, plannedQty, unitPrice decimal.Decimal) (*Delivery, error) {
	if r.Status != RouteStatusPlanned {
		return nil, shared.NewInvalidStateError("Deliveries can only be planned on a planned route")
	}

	nextOrder := len(r.Deliveries) + 1
	delivery, err := NewDelivery(r.TenantID, r.ID, clientID, clientName, nextOrder, plannedQty, unitPrice)
	if err != nil {
		return nil, err
	}

	if r.TotalPlanned().Add(plannedQty).GreaterThan(r.AssignedQty) {
		return nil, shared.NewValidationError("Planned delivery quantities exceed the assigned quantity")
	}

	r.Deliveries = append(r.Deliveries, *delivery)
	r.UpdatedAt = time.Now()

	return delivery, nil
}

// Start transitions the route from PLANNED to IN_PROGRESS. No ledger effect.
func (r *Route) Start() error {
	if !r.Status.CanTransitionTo(RouteStatusInProgress) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot start route in %s status", r.Status))
	}

	now := time.Now()
	r.Status = RouteStatusInProgress
	r.StartedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewRouteStartedEvent(r))

	return nil
}

// Finish transitions the route from IN_PROGRESS to PENDING_RETURN_REVIEW
// and fixes the expected return quantity:
//
//	expected = assigned − Σ delivered (DELIVERED and PARTIAL stops)
//
// The value is computed here exactly once and never recomputed. Deliveries
// still PENDING are left as-is; they represent missed stops, not an error.
func (r *Route) Finish() error {
	if !r.Status.CanTransitionTo(RouteStatusPendingReturnReview) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot finish route in %s status", r.Status))
	}

	expected := r.AssignedQty.Sub(r.TotalDelivered())

	now := time.Now()
	r.Status = RouteStatusPendingReturnReview
	r.ExpectedReturnQty = &expected
	r.FinishedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewRouteFinishedEvent(r))

	return nil
}

// Cancel transitions the route to CANCELLED from PLANNED or IN_PROGRESS.
// The caller is responsible for posting the compensating return movement
// for the remaining vehicle balance (see RemainingOnVehicle) in the same
// transaction; cancellation must never silently orphan inventory.
func (r *Route) Cancel(reason string) error {
	if !r.Status.CanTransitionTo(RouteStatusCancelled) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot cancel route in %s status", r.Status))
	}
	if reason == "" {
		return shared.NewValidationError("Cancel reason is required")
	}

	now := time.Now()
	r.Status = RouteStatusCancelled
	r.CancelledAt = &now
	r.CancelReason = reason
	r.UpdatedAt = now

	r.AddDomainEvent(NewRouteCancelledEvent(r))

	return nil
}

// Flag transitions the route from IN_PROGRESS to ALERT. Raised by anomaly
// detection (e.g. a missed SLA) through an external scheduler; the core
// never flags on its own.
func (r *Route) Flag(reason string) error {
	if !r.Status.CanTransitionTo(RouteStatusAlert) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot flag route in %s status", r.Status))
	}

	now := time.Now()
	r.Status = RouteStatusAlert
	r.UpdatedAt = now

	r.AddDomainEvent(NewRouteFlaggedEvent(r, reason))

	return nil
}

// Close transitions the route from PENDING_RETURN_REVIEW to CLOSED and
// records the reviewed actual return. ActualReturnQty and the terminal
// status are set here exactly once; the caller commits this atomically
// with the correction ledger movements.
func (r *Route) Close(actualReturnQty decimal.Decimal, reviewedBy uuid.UUID) error {
	if !r.Status.CanTransitionTo(RouteStatusClosed) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot close route in %s status", r.Status))
	}
	if actualReturnQty.IsNegative() {
		return shared.NewValidationError("Actual return quantity cannot be negative")
	}
	if actualReturnQty.GreaterThan(r.AssignedQty) {
		return shared.NewValidationError("Actual return quantity cannot exceed the assigned quantity")
	}

	now := time.Now()
	r.Status = RouteStatusClosed
	r.ActualReturnQty = &actualReturnQty
	r.ClosedAt = &now
	r.ReturnReviewedBy = &reviewedBy
	r.ReturnReviewedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewRouteClosedEvent(r))

	return nil
}

// CompleteDelivery records a fulfilled stop. Legal only while the route is
// IN_PROGRESS. The delivered quantity is checked against the per-stop
// overage tolerance and against the route-wide cap: the sum of delivered
// quantities can never exceed the assigned quantity.
func (r *Route) CompleteDelivery(deliveryID uuid.UUID, deliveredQty decimal.Decimal, receiverName string, overageTolerance decimal.Decimal) (*Delivery, error) {
	if r.Status != RouteStatusInProgress {
		return nil, shared.NewInvalidStateError("Deliveries can only be completed while the route is in progress")
	}

	delivery := r.GetDelivery(deliveryID)
	if delivery == nil {
		return nil, shared.ErrNotFound
	}

	if r.TotalDelivered().Add(deliveredQty).GreaterThan(r.AssignedQty) {
		return nil, shared.NewValidationError("Delivered quantities would exceed the route's assigned quantity")
	}

	if err := delivery.Complete(deliveredQty, receiverName, overageTolerance); err != nil {
		return nil, err
	}
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewDeliveryCompletedEvent(r, delivery))

	return delivery, nil
}

// MarkDeliveryIncident records a failed stop. The commodity is assumed to
// remain on the vehicle and is accounted for at route finish, so no ledger
// movement is posted for incidents.
func (r *Route) MarkDeliveryIncident(deliveryID uuid.UUID, reason string) (*Delivery, error) {
	if r.Status != RouteStatusInProgress {
		return nil, shared.NewInvalidStateError("Incidents can only be recorded while the route is in progress")
	}

	delivery := r.GetDelivery(deliveryID)
	if delivery == nil {
		return nil, shared.ErrNotFound
	}

	if err := delivery.MarkIncident(reason); err != nil {
		return nil, err
	}
	r.UpdatedAt = time.Now()

	return delivery, nil
}

// MarkDeliveryNotDelivered records a stop the driver skipped deliberately
func (r *Route) MarkDeliveryNotDelivered(deliveryID uuid.UUID) (*Delivery, error) {
	if r.Status != RouteStatusInProgress {
		return nil, shared.NewInvalidStateError("Stops can only be skipped while the route is in progress")
	}

	delivery := r.GetDelivery(deliveryID)
	if delivery == nil {
		return nil, shared.ErrNotFound
	}

	if err := delivery.MarkNotDelivered(); err != nil {
		return nil, err
	}
	r.UpdatedAt = time.Now()

	return delivery, nil
}

// GetDelivery returns a delivery by its ID
func (r *Route) GetDelivery(deliveryID uuid.UUID) *Delivery {
	for idx := range r.Deliveries {
		if r.Deliveries[idx].ID == deliveryID {
			return &r.Deliveries[idx]
		}
	}
	return nil
}

// TotalPlanned returns the sum of planned quantities across all stops
func (r *Route) TotalPlanned() decimal.Decimal {
	total := decimal.Zero
	for _, d := range r.Deliveries {
		total = total.Add(d.PlannedQty)
	}
	return total
}

// TotalDelivered returns the sum of delivered quantities across stops in
// DELIVERED or PARTIAL status
func (r *Route) TotalDelivered() decimal.Decimal {
	total := decimal.Zero
	for _, d := range r.Deliveries {
		if d.Status == DeliveryStatusDelivered || d.Status == DeliveryStatusPartial {
			total = total.Add(d.DeliveredQty)
		}
	}
	return total
}

// RemainingOnVehicle returns the quantity still attributed to the vehicle
// for this route: assigned minus everything delivered so far. This is the
// amount a compensating return must cover on cancellation.
func (r *Route) RemainingOnVehicle() decimal.Decimal {
	return r.AssignedQty.Sub(r.TotalDelivered())
}

// MermaQty returns the shrinkage recorded at closure, zero when the route
// is not yet closed or no shrinkage was found
func (r *Route) MermaQty() decimal.Decimal {
	if r.ExpectedReturnQty == nil || r.ActualReturnQty == nil {
		return decimal.Zero
	}
	diff := r.ExpectedReturnQty.Sub(*r.ActualReturnQty)
	if diff.IsNegative() {
		return decimal.Zero
	}
	return diff
}

// IsActive returns true if the route is neither terminal nor awaiting review
func (r *Route) IsActive() bool {
	return r.Status == RouteStatusPlanned || r.Status == RouteStatusInProgress
}

// DeliveryCount returns the number of planned stops
func (r *Route) DeliveryCount() int {
	return len(r.Deliveries)
}
