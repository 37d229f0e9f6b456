package anomaly

import (
	"time"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnomalyType classifies what produced the anomaly
type AnomalyType string

const (
	AnomalyTypeReturnShrinkage AnomalyType = "RETURN_SHRINKAGE"
	AnomalyTypeSLABreach       AnomalyType = "SLA_BREACH"
	AnomalyTypeManual          AnomalyType = "MANUAL"
)

// IsValid checks if the type is a valid AnomalyType
func (t AnomalyType) IsValid() bool {
	switch t {
	case AnomalyTypeReturnShrinkage, AnomalyTypeSLABreach, AnomalyTypeManual:
		return true
	}
	return false
}

// String returns the string representation of AnomalyType
func (t AnomalyType) String() string {
	return string(t)
}

// Severity grades how urgent an anomaly is
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// String returns the string representation of Severity
func (s Severity) String() string {
	return string(s)
}

// Status tracks the review lifecycle of an anomaly
type Status string

const (
	StatusNew       Status = "NEW"
	StatusInReview  Status = "IN_REVIEW"
	StatusResolved  Status = "RESOLVED"
	StatusDismissed Status = "DISMISSED"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInReview, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsOpen returns true while the anomaly still needs attention
func (s Status) IsOpen() bool {
	return s == StatusNew || s == StatusInReview
}

// Anomaly records a discrepancy that needs human review, typically raised
// by return reconciliation when the counted return falls short of the
// expected one.
type Anomaly struct {
	shared.TenantAggregateRoot
	AnomalyType AnomalyType     `gorm:"type:varchar(30);not null;index"`
	Severity    Severity        `gorm:"type:varchar(20);not null;index"`
	Status      Status          `gorm:"type:varchar(20);not null;index"`
	RouteID     *uuid.UUID      `gorm:"type:uuid;index"`
	Title       string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReviewedBy  *uuid.UUID      `gorm:"type:uuid"`
	ReviewedAt  *time.Time
	Resolution  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Anomaly) TableName() string {
	return "anomalies"
}

// NewAnomaly creates an anomaly in NEW status
func NewAnomaly(tenantID uuid.UUID, anomalyType AnomalyType, severity Severity, title, description string, quantity decimal.Decimal) (*Anomaly, error) {
	if !anomalyType.IsValid() {
		return nil, shared.NewValidationError("Invalid anomaly type")
	}
	if !severity.IsValid() {
		return nil, shared.NewValidationError("Invalid anomaly severity")
	}
	if title == "" {
		return nil, shared.NewValidationError("Anomaly title cannot be empty")
	}
	if description == "" {
		return nil, shared.NewValidationError("Anomaly description cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewValidationError("Anomaly quantity cannot be negative")
	}

	return &Anomaly{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AnomalyType:         anomalyType,
		Severity:            severity,
		Status:              StatusNew,
		Title:               title,
		Description:         description,
		Quantity:            quantity,
	}, nil
}

// WithRoute links the anomaly to the route that produced it
func (a *Anomaly) WithRoute(routeID uuid.UUID) *Anomaly {
	a.RouteID = &routeID
	return a
}

// StartReview moves the anomaly from NEW to IN_REVIEW
func (a *Anomaly) StartReview(reviewerID uuid.UUID) error {
	if a.Status != StatusNew {
		return shared.NewInvalidStateError("Only new anomalies can enter review")
	}

	now := time.Now()
	a.Status = StatusInReview
	a.ReviewedBy = &reviewerID
	a.ReviewedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	return nil
}

// Resolve closes the anomaly with an explanation
func (a *Anomaly) Resolve(reviewerID uuid.UUID, resolution string) error {
	if !a.Status.IsOpen() {
		return shared.NewInvalidStateError("Anomaly has already been closed")
	}
	if resolution == "" {
		return shared.NewValidationError("Resolution cannot be empty")
	}

	now := time.Now()
	a.Status = StatusResolved
	a.ReviewedBy = &reviewerID
	a.ReviewedAt = &now
	a.Resolution = resolution
	a.UpdatedAt = now
	a.IncrementVersion()

	return nil
}

// Dismiss closes the anomaly without action
func (a *Anomaly) Dismiss(reviewerID uuid.UUID, reason string) error {
	if !a.Status.IsOpen() {
		return shared.NewInvalidStateError("Anomaly has already been closed")
	}

	now := time.Now()
	a.Status = StatusDismissed
	a.ReviewedBy = &reviewerID
	a.ReviewedAt = &now
	a.Resolution = reason
	a.UpdatedAt = now
	a.IncrementVersion()

	return nil
}
