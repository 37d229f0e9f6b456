package route

import (
	"time"

	"github.com/fleet/backend/internal/domain/route"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Route DTOs ====================

// CreateRouteRequest represents a request to plan a new route
type CreateRouteRequest struct {
	PlantID     uuid.UUID                  `json:"plant_id" binding:"required"`
	VehicleID   uuid.UUID                  `json:"vehicle_id" binding:"required"`
	DriverID    *uuid.UUID                 `json:"driver_id"`
	PlannedDate time.Time                  `json:"planned_date" binding:"required"`
	AssignedQty decimal.Decimal            `json:"assigned_qty" binding:"required"`
	Deliveries  []CreateRouteDeliveryInput `json:"deliveries"`
}

// CreateRouteDeliveryInput represents a planned stop in the create request
type CreateRouteDeliveryInput struct {
	ClientID   uuid.UUID       `json:"client_id" binding:"required"`
	PlannedQty decimal.Decimal `json:"planned_qty" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// CancelRouteRequest represents a request to cancel a route
type CancelRouteRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// FlagRouteRequest represents a request to move a route into alert
type FlagRouteRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// CompleteDeliveryRequest represents a driver confirming a stop
type CompleteDeliveryRequest struct {
	DeliveredQty decimal.Decimal `json:"delivered_qty" binding:"required"`
	ReceiverName string          `json:"receiver_name" binding:"required,min=1,max=200"`
	Payment      *PaymentInput   `json:"payment"`
}

// PaymentInput represents the payment recorded alongside a completed stop
type PaymentInput struct {
	Method            string           `json:"method" binding:"required,oneof=CASH TRANSFER CREDIT"`
	Amount            *decimal.Decimal `json:"amount"`
	CollectedByDriver bool             `json:"collected_by_driver"`
}

// DeliveryIncidentRequest represents a failed stop report
type DeliveryIncidentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// CloseRouteRequest represents the reviewed return count that closes a route
type CloseRouteRequest struct {
	ActualReturnQty decimal.Decimal `json:"actual_return_qty"`
}

// RouteListFilter represents filter options for the route list
type RouteListFilter struct {
	Search    string             `form:"search"`
	PlantID   *uuid.UUID         `form:"plant_id"`
	VehicleID *uuid.UUID         `form:"vehicle_id"`
	DriverID  *uuid.UUID         `form:"driver_id"`
	Status    *route.RouteStatus `form:"status"`
	Statuses  []string           `form:"statuses"`
	StartDate *time.Time         `form:"start_date"`
	EndDate   *time.Time         `form:"end_date"`
	Page      int                `form:"page" binding:"min=0"`
	PageSize  int                `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string             `form:"order_by"`
	OrderDir  string             `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RouteResponse represents a route in API responses
type RouteResponse struct {
	ID                uuid.UUID          `json:"id"`
	TenantID          uuid.UUID          `json:"tenant_id"`
	RouteNumber       string             `json:"route_number"`
	PlantID           uuid.UUID          `json:"plant_id"`
	VehicleID         uuid.UUID          `json:"vehicle_id"`
	DriverID          *uuid.UUID         `json:"driver_id,omitempty"`
	Status            string             `json:"status"`
	PlannedDate       time.Time          `json:"planned_date"`
	AssignedQty       decimal.Decimal    `json:"assigned_qty"`
	TotalPlanned      decimal.Decimal    `json:"total_planned"`
	TotalDelivered    decimal.Decimal    `json:"total_delivered"`
	ExpectedReturnQty *decimal.Decimal   `json:"expected_return_qty,omitempty"`
	ActualReturnQty   *decimal.Decimal   `json:"actual_return_qty,omitempty"`
	MermaQty          decimal.Decimal    `json:"merma_qty"`
	VehicleBalance    *decimal.Decimal   `json:"vehicle_balance,omitempty"`
	Deliveries        []DeliveryResponse `json:"deliveries"`
	StartedAt         *time.Time         `json:"started_at,omitempty"`
	FinishedAt        *time.Time         `json:"finished_at,omitempty"`
	ClosedAt          *time.Time         `json:"closed_at,omitempty"`
	CancelledAt       *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason      string             `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Version           int                `json:"version"`
}

// RouteListItemResponse represents a route in list responses (less detail)
type RouteListItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	RouteNumber    string          `json:"route_number"`
	PlantID        uuid.UUID       `json:"plant_id"`
	VehicleID      uuid.UUID       `json:"vehicle_id"`
	DriverID       *uuid.UUID      `json:"driver_id,omitempty"`
	Status         string          `json:"status"`
	PlannedDate    time.Time       `json:"planned_date"`
	AssignedQty    decimal.Decimal `json:"assigned_qty"`
	TotalDelivered decimal.Decimal `json:"total_delivered"`
	DeliveryCount  int             `json:"delivery_count"`
	CreatedAt      time.Time       `json:"created_at"`
}

// DeliveryResponse represents a single stop in API responses
type DeliveryResponse struct {
	ID             uuid.UUID       `json:"id"`
	RouteID        uuid.UUID       `json:"route_id"`
	ClientID       uuid.UUID       `json:"client_id"`
	ClientName     string          `json:"client_name"`
	DeliveryOrder  int             `json:"delivery_order"`
	PlannedQty     decimal.Decimal `json:"planned_qty"`
	DeliveredQty   decimal.Decimal `json:"delivered_qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         string          `json:"status"`
	ReceiverName   string          `json:"receiver_name,omitempty"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
	IncidentReason string          `json:"incident_reason,omitempty"`
}

// ToRouteResponse converts a route aggregate to a RouteResponse
func ToRouteResponse(r *route.Route) RouteResponse {
	return RouteResponse{
		ID:                r.ID,
		TenantID:          r.TenantID,
		RouteNumber:       r.RouteNumber,
		PlantID:           r.PlantID,
		VehicleID:         r.VehicleID,
		DriverID:          r.DriverID,
		Status:            r.Status.String(),
		PlannedDate:       r.PlannedDate,
		AssignedQty:       r.AssignedQty,
		TotalPlanned:      r.TotalPlanned(),
		TotalDelivered:    r.TotalDelivered(),
		ExpectedReturnQty: r.ExpectedReturnQty,
		ActualReturnQty:   r.ActualReturnQty,
		MermaQty:          r.MermaQty(),
		Deliveries:        ToDeliveryResponses(r.Deliveries),
		StartedAt:         r.StartedAt,
		FinishedAt:        r.FinishedAt,
		ClosedAt:          r.ClosedAt,
		CancelledAt:       r.CancelledAt,
		CancelReason:      r.CancelReason,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Version:           r.Version,
	}
}

// ToRouteListItemResponse converts a route to a list item response
func ToRouteListItemResponse(r *route.Route) RouteListItemResponse {
	return RouteListItemResponse{
		ID:             r.ID,
		RouteNumber:    r.RouteNumber,
		PlantID:        r.PlantID,
		VehicleID:      r.VehicleID,
		DriverID:       r.DriverID,
		Status:         r.Status.String(),
		PlannedDate:    r.PlannedDate,
		AssignedQty:    r.AssignedQty,
		TotalDelivered: r.TotalDelivered(),
		DeliveryCount:  r.DeliveryCount(),
		CreatedAt:      r.CreatedAt,
	}
}

// ToRouteListItemResponses converts a slice of routes to list item responses
func ToRouteListItemResponses(routes []route.Route) []RouteListItemResponse {
	responses := make([]RouteListItemResponse, len(routes))
	for i := range routes {
		responses[i] = ToRouteListItemResponse(&routes[i])
	}
	return responses
}

// ToDeliveryResponse converts a delivery to a DeliveryResponse
func ToDeliveryResponse(d *route.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:             d.ID,
		RouteID:        d.RouteID,
		ClientID:       d.ClientID,
		ClientName:     d.ClientName,
		DeliveryOrder:  d.DeliveryOrder,
		PlannedQty:     d.PlannedQty,
		DeliveredQty:   d.DeliveredQty,
		UnitPrice:      d.UnitPrice,
		TotalAmount:    d.TotalAmount,
		Status:         d.Status.String(),
		ReceiverName:   d.ReceiverName,
		DeliveredAt:    d.DeliveredAt,
		IncidentReason: d.IncidentReason,
	}
}

// ToDeliveryResponses converts a slice of deliveries
func ToDeliveryResponses(deliveries []route.Delivery) []DeliveryResponse {
	responses := make([]DeliveryResponse, len(deliveries))
	for i := range deliveries {
		responses[i] = ToDeliveryResponse(&deliveries[i])
	}
	return responses
}
