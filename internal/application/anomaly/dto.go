package anomaly

import (
	"time"

	"github.com/fleet/backend/internal/domain/anomaly"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAnomalyRequest represents a manually filed anomaly
type CreateAnomalyRequest struct {
	Severity    string          `json:"severity" binding:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	Title       string          `json:"title" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	RouteID     *uuid.UUID      `json:"route_id"`
}

// ResolveAnomalyRequest carries the resolution text closing an anomaly
type ResolveAnomalyRequest struct {
	Resolution string `json:"resolution" binding:"required,min=1,max=500"`
}

// DismissAnomalyRequest carries the optional reason for dismissing
type DismissAnomalyRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// AnomalyListFilter represents filter options for the anomaly list
type AnomalyListFilter struct {
	Type     *string    `form:"type"`
	Severity *string    `form:"severity"`
	Status   *string    `form:"status"`
	RouteID  *uuid.UUID `form:"route_id"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AnomalyResponse represents an anomaly in API responses
type AnomalyResponse struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Type        string          `json:"type"`
	Severity    string          `json:"severity"`
	Status      string          `json:"status"`
	RouteID     *uuid.UUID      `json:"route_id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	ReviewedBy  *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time      `json:"reviewed_at,omitempty"`
	Resolution  string          `json:"resolution,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToAnomalyResponse converts an anomaly to an AnomalyResponse
func ToAnomalyResponse(a *anomaly.Anomaly) AnomalyResponse {
	return AnomalyResponse{
		ID:          a.ID,
		TenantID:    a.TenantID,
		Type:        a.AnomalyType.String(),
		Severity:    a.Severity.String(),
		Status:      a.Status.String(),
		RouteID:     a.RouteID,
		Title:       a.Title,
		Description: a.Description,
		Quantity:    a.Quantity,
		ReviewedBy:  a.ReviewedBy,
		ReviewedAt:  a.ReviewedAt,
		Resolution:  a.Resolution,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToAnomalyResponses converts a slice of anomalies
func ToAnomalyResponses(anomalies []anomaly.Anomaly) []AnomalyResponse {
	responses := make([]AnomalyResponse, len(anomalies))
	for i := range anomalies {
		responses[i] = ToAnomalyResponse(&anomalies[i])
	}
	return responses
}
