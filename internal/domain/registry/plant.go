package registry

import (
	"time"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plant represents a fixed supply point holding bulk product inventory.
// Plants are immutable once routes reference them except for deactivation;
// they are never hard-deleted while referenced.
type Plant struct {
	shared.TenantAggregateRoot
	Name     string          `gorm:"type:varchar(200);not null"`
	Location string          `gorm:"type:varchar(300)"`
	Capacity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Active   bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Plant) TableName() string {
	return "plants"
}

// NewPlant creates a new plant
func NewPlant(tenantID uuid.UUID, name, location string, capacity decimal.Decimal) (*Plant, error) {
	if name == "" {
		return nil, shared.NewValidationError("Plant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Plant name cannot exceed 200 characters")
	}
	if capacity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Plant capacity must be positive")
	}

	return &Plant{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Location:            location,
		Capacity:            capacity,
		Active:              true,
	}, nil
}

// Rename updates the plant name
func (p *Plant) Rename(name string) error {
	if name == "" {
		return shared.NewValidationError("Plant name cannot be empty")
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the plant. Deactivated plants cannot be the
// source of new routes; existing routes keep their reference.
func (p *Plant) Deactivate() error {
	if !p.Active {
		return shared.NewInvalidStateError("Plant is already deactivated")
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	return nil
}

// Activate re-enables a deactivated plant
func (p *Plant) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}
