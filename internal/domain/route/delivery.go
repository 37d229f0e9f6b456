package route

import (
	"time"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryStatus represents the fulfillment state of a single stop
type DeliveryStatus string

const (
	DeliveryStatusPending      DeliveryStatus = "PENDING"
	DeliveryStatusDelivered    DeliveryStatus = "DELIVERED"
	DeliveryStatusPartial      DeliveryStatus = "PARTIAL"
	DeliveryStatusNotDelivered DeliveryStatus = "NOT_DELIVERED"
	DeliveryStatusIncident     DeliveryStatus = "INCIDENT"
)

// IsValid checks if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusDelivered, DeliveryStatusPartial,
		DeliveryStatusNotDelivered, DeliveryStatusIncident:
		return true
	}
	return false
}

// String returns the string representation of DeliveryStatus
func (s DeliveryStatus) String() string {
	return string(s)
}

// IsSettled returns true once the stop has a final outcome
func (s DeliveryStatus) IsSettled() bool {
	return s != DeliveryStatusPending
}

// Delivery represents a single client stop within a route. Deliveries are
// owned exclusively by their route: they are created in bulk when the route
// is planned and mutated only while the route is IN_PROGRESS, always
// through the aggregate.
type Delivery struct {
	shared.BaseEntity
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RouteID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientName     string          `gorm:"type:varchar(200);not null"`
	DeliveryOrder  int             `gorm:"not null"`
	PlannedQty     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DeliveredQty   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status         DeliveryStatus  `gorm:"type:varchar(20);not null;index"`
	ReceiverName   string          `gorm:"type:varchar(200)"`
	DeliveredAt    *time.Time
	IncidentReason string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Delivery) TableName() string {
	return "deliveries"
}

// NewDelivery creates a new pending delivery
func NewDelivery(
	tenantID, routeID, clientID uuid.UUID,
	clientName string,
	deliveryOrder int,
	plannedQty, unitPrice decimal.Decimal,
) (*Delivery, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("Client ID cannot be empty")
	}
	if clientName == "" {
		return nil, shared.NewValidationError("Client name cannot be empty")
	}
	if deliveryOrder <= 0 {
		return nil, shared.NewValidationError("Delivery order must be positive")
	}
	if plannedQty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Planned quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}

	return &Delivery{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		RouteID:       routeID,
		ClientID:      clientID,
		ClientName:    clientName,
		DeliveryOrder: deliveryOrder,
		PlannedQty:    plannedQty,
		DeliveredQty:  decimal.Zero,
		UnitPrice:     unitPrice,
		TotalAmount:   decimal.Zero,
		Status:        DeliveryStatusPending,
	}, nil
}

// Complete records the delivered quantity for the stop. The quantity must
// stay within plannedQty × (1 + overageTolerance); the status becomes
// DELIVERED on an exact match and PARTIAL otherwise.
func (d *Delivery) Complete(deliveredQty decimal.Decimal, receiverName string, overageTolerance decimal.Decimal) error {
	if d.Status.IsSettled() {
		return shared.NewInvalidStateError("Delivery has already been settled")
	}
	if deliveredQty.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Delivered quantity must be positive")
	}
	if receiverName == "" {
		return shared.NewValidationError("Receiver name is required")
	}

	maxQty := d.PlannedQty.Mul(decimal.NewFromInt(1).Add(overageTolerance))
	if deliveredQty.GreaterThan(maxQty) {
		return shared.NewValidationError("Delivered quantity exceeds the planned quantity plus tolerance")
	}

	now := time.Now()
	if deliveredQty.Equal(d.PlannedQty) {
		d.Status = DeliveryStatusDelivered
	} else {
		d.Status = DeliveryStatusPartial
	}
	d.DeliveredQty = deliveredQty
	d.TotalAmount = deliveredQty.Mul(d.UnitPrice)
	d.ReceiverName = receiverName
	d.DeliveredAt = &now
	d.UpdatedAt = now

	return nil
}

// MarkIncident records a failed stop. The delivered quantity is forced to
// zero; the commodity remains on the vehicle.
func (d *Delivery) MarkIncident(reason string) error {
	if d.Status.IsSettled() {
		return shared.NewInvalidStateError("Delivery has already been settled")
	}
	if reason == "" {
		return shared.NewValidationError("Incident reason is required")
	}

	d.Status = DeliveryStatusIncident
	d.DeliveredQty = decimal.Zero
	d.TotalAmount = decimal.Zero
	d.IncidentReason = reason
	d.UpdatedAt = time.Now()

	return nil
}

// MarkNotDelivered records a stop the driver skipped
func (d *Delivery) MarkNotDelivered() error {
	if d.Status.IsSettled() {
		return shared.NewInvalidStateError("Delivery has already been settled")
	}

	d.Status = DeliveryStatusNotDelivered
	d.DeliveredQty = decimal.Zero
	d.TotalAmount = decimal.Zero
	d.UpdatedAt = time.Now()

	return nil
}

// IsFulfilled returns true if any quantity reached the client
func (d *Delivery) IsFulfilled() bool {
	return d.Status == DeliveryStatusDelivered || d.Status == DeliveryStatusPartial
}
