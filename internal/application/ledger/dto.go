package ledger

import (
	"time"

	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Ledger DTOs ====================

// PostAdjustmentRequest represents a manual operator correction
type PostAdjustmentRequest struct {
	PlantID   *uuid.UUID      `json:"plant_id"`
	VehicleID *uuid.UUID      `json:"vehicle_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Notes     string          `json:"notes" binding:"required,min=1,max=255"`
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	PlantID       *uuid.UUID `form:"plant_id"`
	VehicleID     *uuid.UUID `form:"vehicle_id"`
	MovementType  *string    `form:"movement_type"`
	ReferenceType *string    `form:"reference_type"`
	ReferenceID   *uuid.UUID `form:"reference_id"`
	StartDate     *time.Time `form:"start_date"`
	EndDate       *time.Time `form:"end_date"`
	Page          int        `form:"page" binding:"min=0"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementResponse represents a ledger movement in API responses
type MovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	PlantID       *uuid.UUID      `json:"plant_id,omitempty"`
	VehicleID     *uuid.UUID      `json:"vehicle_id,omitempty"`
	MovementType  string          `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BalanceResponse represents a location balance in API responses
type BalanceResponse struct {
	PlantID   *uuid.UUID      `json:"plant_id,omitempty"`
	VehicleID *uuid.UUID      `json:"vehicle_id,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	Unit      string          `json:"unit"`
	AsOf      time.Time       `json:"as_of"`
}

// InventorySummaryResponse is the cached tenant-wide read model: total
// stock at plants, total on vehicles and the quantity delivered today
type InventorySummaryResponse struct {
	InPlants       decimal.Decimal `json:"in_plants"`
	InVehicles     decimal.Decimal `json:"in_vehicles"`
	DeliveredToday decimal.Decimal `json:"delivered_today"`
	Unit           string          `json:"unit"`
	ComputedAt     time.Time       `json:"computed_at"`
}

// ToMovementResponse converts a movement to a MovementResponse
func ToMovementResponse(m *ledger.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		TenantID:      m.TenantID,
		PlantID:       m.PlantID,
		VehicleID:     m.VehicleID,
		MovementType:  m.MovementType.String(),
		Quantity:      m.Quantity,
		Unit:          m.Unit,
		ReferenceType: m.ReferenceType.String(),
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		OccurredAt:    m.OccurredAt,
		CreatedAt:     m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []ledger.Movement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses
}
