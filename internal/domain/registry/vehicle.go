package registry

import (
	"time"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vehicle represents a mobile carrier that transports product from a
// plant to clients along a route. Its rated capacity bounds the quantity
// a single route may assign to it.
type Vehicle struct {
	shared.TenantAggregateRoot
	Plate    string          `gorm:"type:varchar(30);not null;index"`
	Capacity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DriverID *uuid.UUID      `gorm:"type:uuid;index"`
	Active   bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Vehicle) TableName() string {
	return "vehicles"
}

// NewVehicle creates a new vehicle
func NewVehicle(tenantID uuid.UUID, plate string, capacity decimal.Decimal) (*Vehicle, error) {
	if plate == "" {
		return nil, shared.NewValidationError("Vehicle plate cannot be empty")
	}
	if len(plate) > 30 {
		return nil, shared.NewValidationError("Vehicle plate cannot exceed 30 characters")
	}
	if capacity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Vehicle capacity must be positive")
	}

	return &Vehicle{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Plate:               plate,
		Capacity:            capacity,
		Active:              true,
	}, nil
}

// AssignDriver assigns a driver to the vehicle
func (v *Vehicle) AssignDriver(driverID uuid.UUID) error {
	if driverID == uuid.Nil {
		return shared.NewValidationError("Driver ID cannot be empty")
	}
	v.DriverID = &driverID
	v.UpdatedAt = time.Now()
	return nil
}

// UnassignDriver removes the driver assignment
func (v *Vehicle) UnassignDriver() {
	v.DriverID = nil
	v.UpdatedAt = time.Now()
}

// CanCarry returns true if the vehicle's rated capacity covers the quantity
func (v *Vehicle) CanCarry(qty decimal.Decimal) bool {
	return v.Capacity.GreaterThanOrEqual(qty)
}

// Deactivate soft-deletes the vehicle
func (v *Vehicle) Deactivate() error {
	if !v.Active {
		return shared.NewInvalidStateError("Vehicle is already deactivated")
	}
	v.Active = false
	v.UpdatedAt = time.Now()
	return nil
}

// Activate re-enables a deactivated vehicle
func (v *Vehicle) Activate() {
	v.Active = true
	v.UpdatedAt = time.Now()
}
