package registry

import (
	"context"

	"github.com/fleet/backend/internal/domain/registry"
	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PlantService handles plant registry operations
type PlantService struct {
	plantRepo registry.PlantRepository
	routeRepo route.RouteRepository
}

// NewPlantService creates a new PlantService
func NewPlantService(plantRepo registry.PlantRepository, routeRepo route.RouteRepository) *PlantService {
	return &PlantService{
		plantRepo: plantRepo,
		routeRepo: routeRepo,
	}
}

// Create registers a new plant
func (s *PlantService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePlantRequest) (*PlantResponse, error) {
	plant, err := registry.NewPlant(tenantID, req.Name, req.Location, req.Capacity)
	if err != nil {
		return nil, err
	}

	if err := s.plantRepo.Save(ctx, plant); err != nil {
		return nil, err
	}

	response := ToPlantResponse(plant)
	return &response, nil
}

// GetByID retrieves a plant by ID
func (s *PlantService) GetByID(ctx context.Context, tenantID, plantID uuid.UUID) (*PlantResponse, error) {
	plant, err := s.plantRepo.FindByIDForTenant(ctx, tenantID, plantID)
	if err != nil {
		return nil, err
	}
	response := ToPlantResponse(plant)
	return &response, nil
}

// List retrieves plants with filtering and pagination
func (s *PlantService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]PlantResponse, int64, error) {
	domainFilter := buildFilter(filter)

	plants, err := s.plantRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.plantRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPlantResponses(plants), total, nil
}

// Update updates a plant's name and location
func (s *PlantService) Update(ctx context.Context, tenantID, plantID uuid.UUID, req UpdatePlantRequest) (*PlantResponse, error) {
	plant, err := s.plantRepo.FindByIDForTenant(ctx, tenantID, plantID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := plant.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Location != nil {
		plant.Location = *req.Location
	}

	if err := s.plantRepo.Save(ctx, plant); err != nil {
		return nil, err
	}

	response := ToPlantResponse(plant)
	return &response, nil
}

// Deactivate soft-deletes a plant. A plant with open routes cannot be
// deactivated; the routes must run to completion or be cancelled first.
func (s *PlantService) Deactivate(ctx context.Context, tenantID, plantID uuid.UUID) (*PlantResponse, error) {
	plant, err := s.plantRepo.FindByIDForTenant(ctx, tenantID, plantID)
	if err != nil {
		return nil, err
	}

	open, err := s.routeRepo.CountOpenByPlant(ctx, tenantID, plantID)
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, shared.NewInvalidStateError("Plant has open routes and cannot be deactivated")
	}

	if err := plant.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.plantRepo.Save(ctx, plant); err != nil {
		return nil, err
	}

	response := ToPlantResponse(plant)
	return &response, nil
}

// Activate re-enables a deactivated plant
func (s *PlantService) Activate(ctx context.Context, tenantID, plantID uuid.UUID) (*PlantResponse, error) {
	plant, err := s.plantRepo.FindByIDForTenant(ctx, tenantID, plantID)
	if err != nil {
		return nil, err
	}

	plant.Activate()
	if err := s.plantRepo.Save(ctx, plant); err != nil {
		return nil, err
	}

	response := ToPlantResponse(plant)
	return &response, nil
}

// buildFilter converts the list filter to a domain filter with defaults
func buildFilter(filter ListFilter) shared.Filter {
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
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	return domainFilter
}
