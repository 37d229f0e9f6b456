package route

import (
	"context"
	"fmt"

	"github.com/fleet/backend/internal/domain/anomaly"
	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/fleet/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default reconciliation thresholds, in quantity units
var (
	// DefaultShrinkageThreshold is the largest discrepancy tolerated without an anomaly
	DefaultShrinkageThreshold = decimal.NewFromFloat(0.5)
	// DefaultCriticalThreshold is the discrepancy above which the anomaly is high severity
	DefaultCriticalThreshold = decimal.NewFromInt(5)
)

// ReconciliationService closes routes awaiting return review. Closing a
// route compares the counted return against the expected one, posts the
// correcting ledger movements, raises anomalies for any discrepancy and
// verifies the conservation identity before committing:
//
//	assigned = delivered + actual return + merma − overage
//
// A failed identity aborts the whole transaction with CONSISTENCY_VIOLATION.
type ReconciliationService struct {
	scope              TransactionScope
	routeRepo          route.RouteRepository
	eventPublisher     shared.EventPublisher
	businessMetrics    *telemetry.BusinessMetrics
	unit               string
	shrinkageThreshold decimal.Decimal
	criticalThreshold  decimal.Decimal
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(scope TransactionScope, routeRepo route.RouteRepository) *ReconciliationService {
	return &ReconciliationService{
		scope:              scope,
		routeRepo:          routeRepo,
		unit:               DefaultQuantityUnit,
		shrinkageThreshold: DefaultShrinkageThreshold,
		criticalThreshold:  DefaultCriticalThreshold,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReconciliationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *ReconciliationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetQuantityUnit overrides the unit recorded on ledger movements
func (s *ReconciliationService) SetQuantityUnit(unit string) {
	if unit != "" {
		s.unit = unit
	}
}

// SetThresholds overrides the shrinkage thresholds
func (s *ReconciliationService) SetThresholds(shrinkage, critical decimal.Decimal) {
	if shrinkage.IsPositive() {
		s.shrinkageThreshold = shrinkage
	}
	if critical.IsPositive() {
		s.criticalThreshold = critical
	}
}

// Close reviews the counted return and closes the route. In one
// transaction it:
//   - transitions the route PENDING_RETURN_REVIEW → CLOSED (status CAS)
//   - posts the return pair, moving the counted quantity vehicle → plant
//   - posts a MERMA debit for any shortfall, or an ADJUSTMENT credit for
//     any overage, so the vehicle's share of this route folds to zero
//   - raises a review-queue anomaly when the discrepancy crosses the
//     configured threshold
//   - re-checks the conservation identity and aborts on violation
func (s *ReconciliationService) Close(ctx context.Context, tenantID, routeID uuid.UUID, reviewerID uuid.UUID, req CloseRouteRequest) (*RouteResponse, error) {
	var r *route.Route
	var raised *anomaly.Anomaly

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		r, err = repos.RouteRepo().FindByIDForUpdate(ctx, tenantID, routeID)
		if err != nil {
			return err
		}
		if r.ExpectedReturnQty == nil {
			return shared.NewInvalidStateError("Route has no expected return to review")
		}
		expected := *r.ExpectedReturnQty

		from := r.Status
		if err := r.Close(req.ActualReturnQty, reviewerID); err != nil {
			return err
		}
		if err := repos.RouteRepo().SaveTransition(ctx, r, from); err != nil {
			return err
		}

		if err := s.postCorrections(ctx, repos, r, expected, req.ActualReturnQty); err != nil {
			return err
		}

		raised, err = s.raiseAnomaly(ctx, repos, r, expected, req.ActualReturnQty)
		if err != nil {
			return err
		}

		return s.checkConservation(ctx, repos, r, expected, req.ActualReturnQty)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, r)

	// Record business metrics
	if s.businessMetrics != nil && raised != nil {
		s.businessMetrics.RecordAnomalyRaised(ctx, tenantID, string(raised.Severity))
	}

	response := ToRouteResponse(r)
	return &response, nil
}

// postCorrections posts the movements that settle the vehicle's share of
// the route: the counted return goes back to the plant, a shortfall is
// written off as merma, an overage is credited as an adjustment.
func (s *ReconciliationService) postCorrections(ctx context.Context, repos TransactionalRepositories, r *route.Route, expected, actual decimal.Decimal) error {
	movements := make([]*ledger.Movement, 0, 3)

	if actual.IsPositive() {
		back, err := ledger.NewMovement(r.TenantID, ledger.VehicleLocation(r.VehicleID), ledger.MovementTypeReturn,
			actual.Neg(), s.unit, ledger.ReferenceTypeRoute, r.ID)
		if err != nil {
			return err
		}
		in, err := ledger.NewMovement(r.TenantID, ledger.PlantLocation(r.PlantID), ledger.MovementTypeReturn,
			actual, s.unit, ledger.ReferenceTypeRoute, r.ID)
		if err != nil {
			return err
		}
		movements = append(movements, back, in)
	}

	diff := expected.Sub(actual)
	switch {
	case diff.IsPositive():
		merma, err := ledger.NewMovement(r.TenantID, ledger.VehicleLocation(r.VehicleID), ledger.MovementTypeMerma,
			diff.Neg(), s.unit, ledger.ReferenceTypeRoute, r.ID)
		if err != nil {
			return err
		}
		movements = append(movements, merma.WithNotes("return shortfall written off at review"))
	case diff.IsNegative():
		adjustment, err := ledger.NewMovement(r.TenantID, ledger.VehicleLocation(r.VehicleID), ledger.MovementTypeAdjustment,
			diff.Neg(), s.unit, ledger.ReferenceTypeRoute, r.ID)
		if err != nil {
			return err
		}
		movements = append(movements, adjustment.WithNotes("return overage credited at review"))
	}

	if len(movements) == 0 {
		return nil
	}
	return repos.MovementRepo().AppendAll(ctx, movements...)
}

// raiseAnomaly files a review-queue anomaly when the counted return
// deviates from the expected one beyond the configured threshold. It
// returns the filed anomaly, or nil when the discrepancy was tolerable.
func (s *ReconciliationService) raiseAnomaly(ctx context.Context, repos TransactionalRepositories, r *route.Route, expected, actual decimal.Decimal) (*anomaly.Anomaly, error) {
	diff := expected.Sub(actual)
	abs := diff.Abs()
	if !abs.GreaterThan(s.shrinkageThreshold) {
		return nil, nil
	}

	severity := anomaly.SeverityMedium
	if abs.GreaterThan(s.criticalThreshold) {
		severity = anomaly.SeverityHigh
	}

	title := fmt.Sprintf("Return shrinkage on route %s", r.RouteNumber)
	description := fmt.Sprintf("Route %s returned %s of an expected %s", r.RouteNumber, actual.String(), expected.String())
	a, err := anomaly.NewAnomaly(r.TenantID, anomaly.AnomalyTypeReturnShrinkage, severity, title, description, abs)
	if err != nil {
		return nil, err
	}
	if err := repos.AnomalyRepo().Save(ctx, a.WithRoute(r.ID)); err != nil {
		return nil, err
	}
	return a, nil
}

// checkConservation verifies that everything assigned to the route is
// accounted for and that the vehicle's overall balance did not go
// negative. Both checks failing means a write went wrong inside this very
// transaction, so the error aborts the commit.
func (s *ReconciliationService) checkConservation(ctx context.Context, repos TransactionalRepositories, r *route.Route, expected, actual decimal.Decimal) error {
	merma := decimal.Zero
	overage := decimal.Zero
	diff := expected.Sub(actual)
	if diff.IsPositive() {
		merma = diff
	} else {
		overage = diff.Neg()
	}

	accounted := r.TotalDelivered().Add(actual).Add(merma).Sub(overage)
	if !accounted.Equal(r.AssignedQty) {
		return shared.NewConsistencyViolation(
			fmt.Sprintf("Route %s accounts for %s of an assigned %s", r.RouteNumber, accounted.String(), r.AssignedQty.String()))
	}

	balance, err := repos.MovementRepo().BalanceOf(ctx, r.TenantID, ledger.VehicleLocation(r.VehicleID))
	if err != nil {
		return err
	}
	if balance.IsNegative() {
		return shared.NewConsistencyViolation(
			fmt.Sprintf("Vehicle balance went negative (%s) while closing route %s", balance.String(), r.RouteNumber))
	}
	return nil
}

// publishDomainEvents publishes all pending domain events from the route
func (s *ReconciliationService) publishDomainEvents(ctx context.Context, r *route.Route) {
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

// newAlertAnomaly builds the review-queue entry filed when a route is
// flagged into ALERT
func newAlertAnomaly(r *route.Route, reason string) (*anomaly.Anomaly, error) {
	title := fmt.Sprintf("Route %s flagged", r.RouteNumber)
	description := fmt.Sprintf("Route %s flagged: %s", r.RouteNumber, reason)
	a, err := anomaly.NewAnomaly(r.TenantID, anomaly.AnomalyTypeSLABreach, anomaly.SeverityHigh, title, description, r.RemainingOnVehicle())
	if err != nil {
		return nil, err
	}
	return a.WithRoute(r.ID), nil
}
