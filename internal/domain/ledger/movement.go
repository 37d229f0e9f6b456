package ledger

import (
	"time"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the type of ledger movement
type MovementType string

const (
	// MovementTypeTransferOut records product leaving a plant for a vehicle
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
	// MovementTypeTransferIn records product loaded onto a vehicle from a plant
	MovementTypeTransferIn MovementType = "TRANSFER_IN"
	// MovementTypeReturn records unsold product returned from a vehicle to a plant
	MovementTypeReturn MovementType = "RETURN"
	// MovementTypeMerma records unexplained shrinkage detected at reconciliation
	MovementTypeMerma MovementType = "MERMA"
	// MovementTypeAdjustment records a manual operator correction
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeTransferOut,
		MovementTypeTransferIn,
		MovementTypeReturn,
		MovementTypeMerma,
		MovementTypeAdjustment:
		return true
	}
	return false
}

// ReferenceType identifies the kind of document that caused a movement
type ReferenceType string

const (
	// ReferenceTypeRoute points back to the route that caused the movement
	ReferenceTypeRoute ReferenceType = "ROUTE"
	// ReferenceTypeDelivery points back to a single delivery
	ReferenceTypeDelivery ReferenceType = "DELIVERY"
	// ReferenceTypeManual marks an operator-initiated adjustment
	ReferenceTypeManual ReferenceType = "MANUAL"
)

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypeRoute, ReferenceTypeDelivery, ReferenceTypeManual:
		return true
	}
	return false
}

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// LocationRef identifies the plant or vehicle a movement is attributed to.
// Exactly one of PlantID or VehicleID is set.
type LocationRef struct {
	PlantID   *uuid.UUID
	VehicleID *uuid.UUID
}

// PlantLocation creates a location reference for a plant
func PlantLocation(plantID uuid.UUID) LocationRef {
	return LocationRef{PlantID: &plantID}
}

// VehicleLocation creates a location reference for a vehicle
func VehicleLocation(vehicleID uuid.UUID) LocationRef {
	return LocationRef{VehicleID: &vehicleID}
}

// IsValid returns true if exactly one location is set
func (l LocationRef) IsValid() bool {
	return (l.PlantID != nil) != (l.VehicleID != nil)
}

// IsVehicle returns true if the reference points at a vehicle
func (l LocationRef) IsVehicle() bool {
	return l.VehicleID != nil
}

// Movement represents an immutable, signed quantity record attributing an
// inventory change to a location and a causing reference. Movements are
// never updated or deleted; corrections are always new movements. The
// current balance at any location is the signed sum of all movements
// referencing that location.
type Movement struct {
	shared.BaseEntity
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_movements_tenant_time,priority:1"`
	PlantID       *uuid.UUID      `gorm:"type:uuid;index"`
	VehicleID     *uuid.UUID      `gorm:"type:uuid;index"`
	MovementType  MovementType    `gorm:"type:varchar(20);not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Signed; positive credits the location
	Unit          string          `gorm:"type:varchar(20);not null"`
	ReferenceType ReferenceType   `gorm:"type:varchar(20);not null;index:idx_movements_reference"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_movements_reference"`
	Notes         string          `gorm:"type:varchar(255)"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
	OccurredAt    time.Time       `gorm:"type:timestamptz;not null;index:idx_movements_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "ledger_movements"
}

// NewMovement creates a new ledger movement
func NewMovement(
	tenantID uuid.UUID,
	location LocationRef,
	movementType MovementType,
	quantity decimal.Decimal,
	unit string,
	referenceType ReferenceType,
	referenceID uuid.UUID,
) (*Movement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID cannot be empty")
	}
	if !location.IsValid() {
		return nil, shared.NewValidationError("Movement must reference exactly one plant or vehicle")
	}
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("Invalid movement type")
	}
	if quantity.IsZero() {
		return nil, shared.NewValidationError("Movement quantity cannot be zero")
	}
	if unit == "" {
		return nil, shared.NewValidationError("Movement unit cannot be empty")
	}
	if !referenceType.IsValid() {
		return nil, shared.NewValidationError("Invalid reference type")
	}
	if referenceID == uuid.Nil {
		return nil, shared.NewValidationError("Reference ID cannot be empty")
	}

	return &Movement{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		PlantID:       location.PlantID,
		VehicleID:     location.VehicleID,
		MovementType:  movementType,
		Quantity:      quantity,
		Unit:          unit,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		OccurredAt:    time.Now(),
	}, nil
}

// WithNotes sets the free-form notes for the movement
func (m *Movement) WithNotes(notes string) *Movement {
	m.Notes = notes
	return m
}

// WithCreatedBy sets the user who caused the movement
func (m *Movement) WithCreatedBy(userID uuid.UUID) *Movement {
	m.CreatedBy = &userID
	return m
}

// WithOccurredAt overrides the movement timestamp
func (m *Movement) WithOccurredAt(at time.Time) *Movement {
	m.OccurredAt = at
	return m
}

// Location returns the location reference of the movement
func (m *Movement) Location() LocationRef {
	return LocationRef{PlantID: m.PlantID, VehicleID: m.VehicleID}
}

// IsDebit returns true if the movement removes quantity from its location
func (m *Movement) IsDebit() bool {
	return m.Quantity.IsNegative()
}

// IsCredit returns true if the movement adds quantity to its location
func (m *Movement) IsCredit() bool {
	return m.Quantity.IsPositive()
}
