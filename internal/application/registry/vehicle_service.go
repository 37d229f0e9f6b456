package registry

import (
	"context"

	"github.com/fleet/backend/internal/domain/registry"
	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VehicleService handles vehicle registry operations
type VehicleService struct {
	vehicleRepo registry.VehicleRepository
	routeRepo   route.RouteRepository
}

// NewVehicleService creates a new VehicleService
func NewVehicleService(vehicleRepo registry.VehicleRepository, routeRepo route.RouteRepository) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		routeRepo:   routeRepo,
	}
}

// Create registers a new vehicle. Plates are unique per tenant.
func (s *VehicleService) Create(ctx context.Context, tenantID uuid.UUID, req CreateVehicleRequest) (*VehicleResponse, error) {
	existing, err := s.vehicleRepo.FindByPlate(ctx, tenantID, req.Plate)
	if err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A vehicle with this plate is already registered")
	}

	vehicle, err := registry.NewVehicle(tenantID, req.Plate, req.Capacity)
	if err != nil {
		return nil, err
	}
	if req.DriverID != nil {
		if err := vehicle.AssignDriver(*req.DriverID); err != nil {
			return nil, err
		}
	}

	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, err
	}

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// GetByID retrieves a vehicle by ID
func (s *VehicleService) GetByID(ctx context.Context, tenantID, vehicleID uuid.UUID) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByIDForTenant(ctx, tenantID, vehicleID)
	if err != nil {
		return nil, err
	}
	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// List retrieves vehicles with filtering and pagination
func (s *VehicleService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]VehicleResponse, int64, error) {
	domainFilter := buildFilter(filter)

	vehicles, err := s.vehicleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.vehicleRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToVehicleResponses(vehicles), total, nil
}

// AssignDriver assigns a driver to a vehicle
func (s *VehicleService) AssignDriver(ctx context.Context, tenantID, vehicleID uuid.UUID, req AssignDriverRequest) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByIDForTenant(ctx, tenantID, vehicleID)
	if err != nil {
		return nil, err
	}

	if err := vehicle.AssignDriver(req.DriverID); err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, err
	}

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// UnassignDriver removes the driver from a vehicle
func (s *VehicleService) UnassignDriver(ctx context.Context, tenantID, vehicleID uuid.UUID) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByIDForTenant(ctx, tenantID, vehicleID)
	if err != nil {
		return nil, err
	}

	vehicle.UnassignDriver()
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, err
	}

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// Deactivate soft-deletes a vehicle. A vehicle with open routes cannot be
// deactivated.
func (s *VehicleService) Deactivate(ctx context.Context, tenantID, vehicleID uuid.UUID) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByIDForTenant(ctx, tenantID, vehicleID)
	if err != nil {
		return nil, err
	}

	open, err := s.routeRepo.CountOpenByVehicle(ctx, tenantID, vehicleID)
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, shared.NewInvalidStateError("Vehicle has open routes and cannot be deactivated")
	}

	if err := vehicle.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, err
	}

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// Activate re-enables a deactivated vehicle
func (s *VehicleService) Activate(ctx context.Context, tenantID, vehicleID uuid.UUID) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByIDForTenant(ctx, tenantID, vehicleID)
	if err != nil {
		return nil, err
	}

	vehicle.Activate()
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, err
	}

	response := ToVehicleResponse(vehicle)
	return &response, nil
}
