package registry

import (
	"time"

	"github.com/fleet/backend/internal/domain/registry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Plant DTOs ====================

// CreatePlantRequest represents a request to register a plant
type CreatePlantRequest struct {
	Name     string          `json:"name" binding:"required,min=1,max=200"`
	Location string          `json:"location" binding:"max=300"`
	Capacity decimal.Decimal `json:"capacity" binding:"required"`
}

// UpdatePlantRequest represents a request to update a plant
type UpdatePlantRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

// PlantResponse represents a plant in API responses
type PlantResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Name      string          `json:"name"`
	Location  string          `json:"location,omitempty"`
	Capacity  decimal.Decimal `json:"capacity"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToPlantResponse converts a plant to a PlantResponse
func ToPlantResponse(p *registry.Plant) PlantResponse {
	return PlantResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Name:      p.Name,
		Location:  p.Location,
		Capacity:  p.Capacity,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToPlantResponses converts a slice of plants
func ToPlantResponses(plants []registry.Plant) []PlantResponse {
	responses := make([]PlantResponse, len(plants))
	for i := range plants {
		responses[i] = ToPlantResponse(&plants[i])
	}
	return responses
}

// ==================== Vehicle DTOs ====================

// CreateVehicleRequest represents a request to register a vehicle
type CreateVehicleRequest struct {
	Plate    string          `json:"plate" binding:"required,min=1,max=30"`
	Capacity decimal.Decimal `json:"capacity" binding:"required"`
	DriverID *uuid.UUID      `json:"driver_id"`
}

// AssignDriverRequest represents a request to assign a driver
type AssignDriverRequest struct {
	DriverID uuid.UUID `json:"driver_id" binding:"required"`
}

// VehicleResponse represents a vehicle in API responses
type VehicleResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Plate     string          `json:"plate"`
	Capacity  decimal.Decimal `json:"capacity"`
	DriverID  *uuid.UUID      `json:"driver_id,omitempty"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToVehicleResponse converts a vehicle to a VehicleResponse
func ToVehicleResponse(v *registry.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:        v.ID,
		TenantID:  v.TenantID,
		Plate:     v.Plate,
		Capacity:  v.Capacity,
		DriverID:  v.DriverID,
		Active:    v.Active,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// ToVehicleResponses converts a slice of vehicles
func ToVehicleResponses(vehicles []registry.Vehicle) []VehicleResponse {
	responses := make([]VehicleResponse, len(vehicles))
	for i := range vehicles {
		responses[i] = ToVehicleResponse(&vehicles[i])
	}
	return responses
}

// ==================== Client DTOs ====================

// CreateClientRequest represents a request to register a client
type CreateClientRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=200"`
	Address    string `json:"address" binding:"max=300"`
	Contact    string `json:"contact" binding:"max=100"`
	ClientType string `json:"client_type" binding:"required,oneof=CONTRACT FREE"`
}

// UpdateClientRequest represents a request to update client contact details
type UpdateClientRequest struct {
	Address *string `json:"address"`
	Contact *string `json:"contact"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address,omitempty"`
	Contact    string    `json:"contact,omitempty"`
	ClientType string    `json:"client_type"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToClientResponse converts a client to a ClientResponse
func ToClientResponse(c *registry.Client) ClientResponse {
	return ClientResponse{
		ID:         c.ID,
		TenantID:   c.TenantID,
		Name:       c.Name,
		Address:    c.Address,
		Contact:    c.Contact,
		ClientType: c.ClientType.String(),
		Status:     c.Status.String(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// ToClientResponses converts a slice of clients
func ToClientResponses(clients []registry.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return responses
}

// ==================== Shared list filter ====================

// ListFilter represents the common filter options for registry lists
type ListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
