package route

import (
	"context"
	"fmt"

	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/registry"
	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/fleet/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// DefaultQuantityUnit is the unit used for ledger movements when none is
// configured
const DefaultQuantityUnit = "cylinder"

// LifecycleService drives the route state machine. Every transition that
// moves inventory (create, cancel) posts its ledger movements in the same
// transaction as the status change; transitions race through a status
// compare-and-set in the repository, so concurrent operators get a
// CONCURRENCY_CONFLICT instead of a double transition.
type LifecycleService struct {
	scope           TransactionScope
	routeRepo       route.RouteRepository
	movementRepo    ledger.MovementRepository
	plantRepo       registry.PlantRepository
	vehicleRepo     registry.VehicleRepository
	clientRepo      registry.ClientRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	unit            string
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	scope TransactionScope,
	routeRepo route.RouteRepository,
	movementRepo ledger.MovementRepository,
	plantRepo registry.PlantRepository,
	vehicleRepo registry.VehicleRepository,
	clientRepo registry.ClientRepository,
) *LifecycleService {
	return &LifecycleService{
		scope:        scope,
		routeRepo:    routeRepo,
		movementRepo: movementRepo,
		plantRepo:    plantRepo,
		vehicleRepo:  vehicleRepo,
		clientRepo:   clientRepo,
		unit:         DefaultQuantityUnit,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *LifecycleService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetQuantityUnit overrides the unit recorded on ledger movements
func (s *LifecycleService) SetQuantityUnit(unit string) {
	if unit != "" {
		s.unit = unit
	}
}

// Create plans a new route and posts the paired load movements: the plant
// is debited and the vehicle credited with the assigned quantity, both
// referencing the new route. Plants are unconstrained sources, so the
// plant balance may go negative; external resupply is not modeled.
func (s *LifecycleService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRouteRequest) (*RouteResponse, error) {
	plant, err := s.plantRepo.FindByIDForTenant(ctx, tenantID, req.PlantID)
	if err != nil {
		return nil, err
	}
	if !plant.Active {
		return nil, shared.NewInvalidStateError("Plant is deactivated and cannot source new routes")
	}

	vehicle, err := s.vehicleRepo.FindByIDForTenant(ctx, tenantID, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.Active {
		return nil, shared.NewInvalidStateError("Vehicle is deactivated and cannot be assigned")
	}
	if !vehicle.CanCarry(req.AssignedQty) {
		return nil, shared.NewValidationError("Assigned quantity exceeds the vehicle's rated capacity")
	}

	clients, err := s.loadClients(ctx, tenantID, req.Deliveries)
	if err != nil {
		return nil, err
	}

	routeNumber, err := s.routeRepo.GenerateRouteNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	r, err := route.NewRoute(tenantID, routeNumber, req.PlantID, req.VehicleID, req.PlannedDate, req.AssignedQty)
	if err != nil {
		return nil, err
	}
	if req.DriverID != nil {
		if err := r.AssignDriver(*req.DriverID); err != nil {
			return nil, err
		}
	}
	for _, input := range req.Deliveries {
		client := clients[input.ClientID]
		if _, err := r.AddDelivery(client.ID, client.Name, input.PlannedQty, input.UnitPrice); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.RouteRepo().Save(ctx, r); err != nil {
			return err
		}

		out, err := ledger.NewMovement(tenantID, ledger.PlantLocation(req.PlantID), ledger.MovementTypeTransferOut,
			req.AssignedQty.Neg(), s.unit, ledger.ReferenceTypeRoute, r.ID)
		if err != nil {
			return err
		}
		in, err := ledger.NewMovement(tenantID, ledger.VehicleLocation(req.VehicleID), ledger.MovementTypeTransferIn,
			req.AssignedQty, s.unit, ledger.ReferenceTypeRoute, r.ID)
		if err != nil {
			return err
		}
		return repos.MovementRepo().AppendAll(ctx, out, in)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, r)

	response := ToRouteResponse(r)
	return &response, nil
}

// Start transitions a planned route to IN_PROGRESS
func (s *LifecycleService) Start(ctx context.Context, tenantID, routeID uuid.UUID) (*RouteResponse, error) {
	var r *route.Route
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		r, err = repos.RouteRepo().FindByIDForUpdate(ctx, tenantID, routeID)
		if err != nil {
			return err
		}

		from := r.Status
		if err := r.Start(); err != nil {
			return err
		}
		return repos.RouteRepo().SaveTransition(ctx, r, from)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, r)

	response := ToRouteResponse(r)
	return &response, nil
}

// Finish transitions an in-progress route to PENDING_RETURN_REVIEW and
// fixes the expected return quantity. No ledger movement is posted; the
// remaining stock stays attributed to the vehicle until review.
func (s *LifecycleService) Finish(ctx context.Context, tenantID, routeID uuid.UUID) (*RouteResponse, error) {
	var r *route.Route
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		r, err = repos.RouteRepo().FindByIDForUpdate(ctx, tenantID, routeID)
		if err != nil {
			return err
		}

		from := r.Status
		if err := r.Finish(); err != nil {
			return err
		}
		return repos.RouteRepo().SaveTransition(ctx, r, from)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, r)

	response := ToRouteResponse(r)
	return &response, nil
}

// Cancel transitions a route to CANCELLED and posts the compensating
// return pair for whatever is still attributed to the vehicle, so a
// cancelled route never strands inventory.
func (s *LifecycleService) Cancel(ctx context.Context, tenantID, routeID uuid.UUID, req CancelRouteRequest) (*RouteResponse, error) {
	var r *route.Route
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		r, err = repos.RouteRepo().FindByIDForUpdate(ctx, tenantID, routeID)
		if err != nil {
			return err
		}

		remaining := r.RemainingOnVehicle()

		from := r.Status
		if err := r.Cancel(req.Reason); err != nil {
			return err
		}
		if err := repos.RouteRepo().SaveTransition(ctx, r, from); err != nil {
			return err
		}

		if remaining.IsZero() {
			return nil
		}
		back, err := ledger.NewMovement(tenantID, ledger.VehicleLocation(r.VehicleID), ledger.MovementTypeReturn,
			remaining.Neg(), s.unit, ledger.ReferenceTypeRoute, r.ID)
		if err != nil {
			return err
		}
		in, err := ledger.NewMovement(tenantID, ledger.PlantLocation(r.PlantID), ledger.MovementTypeReturn,
			remaining, s.unit, ledger.ReferenceTypeRoute, r.ID)
		if err != nil {
			return err
		}
		return repos.MovementRepo().AppendAll(ctx, back, in)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, r)

	response := ToRouteResponse(r)
	return &response, nil
}

// Flag transitions an in-progress route to ALERT and records an anomaly
// for the review queue. Ledger movements are left untouched; the stock
// stays attributed to the vehicle until an operator adjusts it manually.
func (s *LifecycleService) Flag(ctx context.Context, tenantID, routeID uuid.UUID, req FlagRouteRequest) (*RouteResponse, error) {
	var r *route.Route
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		r, err = repos.RouteRepo().FindByIDForUpdate(ctx, tenantID, routeID)
		if err != nil {
			return err
		}

		from := r.Status
		if err := r.Flag(req.Reason); err != nil {
			return err
		}
		if err := repos.RouteRepo().SaveTransition(ctx, r, from); err != nil {
			return err
		}

		a, err := newAlertAnomaly(r, req.Reason)
		if err != nil {
			return err
		}
		return repos.AnomalyRepo().Save(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, r)

	response := ToRouteResponse(r)
	return &response, nil
}

// GetByID retrieves a route by ID, with the vehicle's current
// ledger-derived balance attached to the projection
func (s *LifecycleService) GetByID(ctx context.Context, tenantID, routeID uuid.UUID) (*RouteResponse, error) {
	r, err := s.routeRepo.FindByIDForTenant(ctx, tenantID, routeID)
	if err != nil {
		return nil, err
	}
	return s.projectRoute(ctx, r)
}

// GetByRouteNumber retrieves a route by its route number
func (s *LifecycleService) GetByRouteNumber(ctx context.Context, tenantID uuid.UUID, routeNumber string) (*RouteResponse, error) {
	r, err := s.routeRepo.FindByRouteNumber(ctx, tenantID, routeNumber)
	if err != nil {
		return nil, err
	}
	return s.projectRoute(ctx, r)
}

// projectRoute folds the vehicle's ledger balance into the route response
func (s *LifecycleService) projectRoute(ctx context.Context, r *route.Route) (*RouteResponse, error) {
	response := ToRouteResponse(r)
	balance, err := s.movementRepo.BalanceOf(ctx, r.TenantID, ledger.VehicleLocation(r.VehicleID))
	if err != nil {
		return nil, err
	}
	response.VehicleBalance = &balance
	return &response, nil
}

// List retrieves routes with filtering and pagination
func (s *LifecycleService) List(ctx context.Context, tenantID uuid.UUID, filter RouteListFilter) ([]RouteListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.PlantID != nil {
		domainFilter.Filters["plant_id"] = *filter.PlantID
	}
	if filter.VehicleID != nil {
		domainFilter.Filters["vehicle_id"] = *filter.VehicleID
	}
	if filter.DriverID != nil {
		domainFilter.Filters["driver_id"] = *filter.DriverID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.StartDate != nil {
		domainFilter.Filters["planned_date_from"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["planned_date_to"] = *filter.EndDate
	}

	routes, err := s.routeRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.routeRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToRouteListItemResponses(routes), total, nil
}

// ListActive retrieves all routes that are planned or in progress
func (s *LifecycleService) ListActive(ctx context.Context, tenantID uuid.UUID) ([]RouteListItemResponse, error) {
	routes, err := s.routeRepo.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToRouteListItemResponses(routes), nil
}

// loadClients resolves and validates every client referenced by the
// planned deliveries. Blocked clients are rejected outright.
func (s *LifecycleService) loadClients(ctx context.Context, tenantID uuid.UUID, deliveries []CreateRouteDeliveryInput) (map[uuid.UUID]*registry.Client, error) {
	if len(deliveries) == 0 {
		return map[uuid.UUID]*registry.Client{}, nil
	}

	ids := make([]uuid.UUID, 0, len(deliveries))
	seen := make(map[uuid.UUID]bool, len(deliveries))
	for _, d := range deliveries {
		if !seen[d.ClientID] {
			seen[d.ClientID] = true
			ids = append(ids, d.ClientID)
		}
	}

	clients, err := s.clientRepo.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*registry.Client, len(clients))
	for i := range clients {
		byID[clients[i].ID] = &clients[i]
	}

	for _, id := range ids {
		client, ok := byID[id]
		if !ok {
			return nil, shared.ErrNotFound
		}
		if !client.CanReceiveDelivery() {
			return nil, shared.NewDomainError("BLOCKED_CLIENT",
				fmt.Sprintf("Client %s is blocked and cannot receive deliveries", client.Name))
		}
	}

	return byID, nil
}

// publishDomainEvents publishes all pending domain events from the route
// and records the transition metric
func (s *LifecycleService) publishDomainEvents(ctx context.Context, r *route.Route) {
	if r == nil {
		return
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordRouteTransition(ctx, r.TenantID, string(r.Status))
	}
	if s.eventPublisher == nil {
		return
	}
	events := r.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	r.ClearDomainEvents()
}
