package route

import (
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a completed delivery was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCredit   PaymentMethod = "CREDIT"
)

// IsValid returns true if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCredit:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentEvent records the payment linkage of a completed delivery. It is
// coupled 1:1 with the delivery it belongs to; settlement itself is handled
// by an external collaborator.
type PaymentEvent struct {
	shared.BaseEntity
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeliveryID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Method            PaymentMethod   `gorm:"type:varchar(20);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CollectedByDriver bool            `gorm:"not null"`
	CreatedBy         *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentEvent) TableName() string {
	return "payment_events"
}

// NewPaymentEvent creates a payment event for a completed delivery
func NewPaymentEvent(tenantID, deliveryID uuid.UUID, method PaymentMethod, amount decimal.Decimal, collectedByDriver bool) (*PaymentEvent, error) {
	if deliveryID == uuid.Nil {
		return nil, shared.NewValidationError("Delivery ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("Invalid payment method")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("Payment amount cannot be negative")
	}

	return &PaymentEvent{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          tenantID,
		DeliveryID:        deliveryID,
		Method:            method,
		Amount:            amount,
		CollectedByDriver: collectedByDriver,
	}, nil
}

// WithCreatedBy sets the user who recorded the payment
func (p *PaymentEvent) WithCreatedBy(userID uuid.UUID) *PaymentEvent {
	p.CreatedBy = &userID
	return p
}
