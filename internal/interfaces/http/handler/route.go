package handler

import (
	routeapp "github.com/fleet/backend/internal/application/route"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RouteHandler handles route lifecycle API endpoints. Delivery execution and
// return reconciliation are exposed here too since both operate on the route
// aggregate.
type RouteHandler struct {
	BaseHandler
	lifecycleService      *routeapp.LifecycleService
	deliveryService       *routeapp.DeliveryService
	reconciliationService *routeapp.ReconciliationService
}

// NewRouteHandler creates a new RouteHandler
func NewRouteHandler(
	lifecycleService *routeapp.LifecycleService,
	deliveryService *routeapp.DeliveryService,
	reconciliationService *routeapp.ReconciliationService,
) *RouteHandler {
	return &RouteHandler{
		lifecycleService:      lifecycleService,
		deliveryService:       deliveryService,
		reconciliationService: reconciliationService,
	}
}

// Create plans a new route with its deliveries
func (h *RouteHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req routeapp.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	route, err := h.lifecycleService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, route)
}

// GetByID retrieves a route with its deliveries
func (h *RouteHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	route, err := h.lifecycleService.GetByID(c.Request.Context(), tenantID, routeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, route)
}

// GetByRouteNumber retrieves a route by its route number
func (h *RouteHandler) GetByRouteNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeNumber := c.Param("number")
	if routeNumber == "" {
		h.BadRequest(c, "Route number is required")
		return
	}

	route, err := h.lifecycleService.GetByRouteNumber(c.Request.Context(), tenantID, routeNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, route)
}

// List retrieves a paginated list of routes
func (h *RouteHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter routeapp.RouteListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	routes, total, err := h.lifecycleService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, routes, total, filter.Page, filter.PageSize)
}

// ListActive retrieves all non-terminal routes for the tenant
func (h *RouteHandler) ListActive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routes, err := h.lifecycleService.ListActive(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, routes)
}

// Start moves a planned route into IN_PROGRESS and posts the loading movements
func (h *RouteHandler) Start(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	route, err := h.lifecycleService.Start(c.Request.Context(), tenantID, routeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, route)
}

// Finish moves an in-progress route into PENDING_RETURN_REVIEW and freezes
// the expected return quantity
func (h *RouteHandler) Finish(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	route, err := h.lifecycleService.Finish(c.Request.Context(), tenantID, routeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, route)
}

// Cancel cancels a route and reverses its loading movements if it was started
func (h *RouteHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	var req routeapp.CancelRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	route, err := h.lifecycleService.Cancel(c.Request.Context(), tenantID, routeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, route)
}

// Flag moves a route into the terminal ALERT status for supervisor attention
func (h *RouteHandler) Flag(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	var req routeapp.FlagRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	route, err := h.lifecycleService.Flag(c.Request.Context(), tenantID, routeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, route)
}

// Close reconciles the counted return against the expected one and closes
// the route. The reviewer is taken from the authenticated user.
func (h *RouteHandler) Close(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Reviewer identity required")
		return
	}

	var req routeapp.CloseRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	route, err := h.reconciliationService.Close(c.Request.Context(), tenantID, routeID, reviewerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, route)
}

// CompleteDelivery records a delivered stop with quantity, receiver and
// optional payment
func (h *RouteHandler) CompleteDelivery(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	deliveryID, err := uuid.Parse(c.Param("deliveryId"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	var req routeapp.CompleteDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	delivery, err := h.deliveryService.Complete(c.Request.Context(), tenantID, routeID, deliveryID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, delivery)
}

// ReportDeliveryIncident records a failed stop with a reason
func (h *RouteHandler) ReportDeliveryIncident(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	deliveryID, err := uuid.Parse(c.Param("deliveryId"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	var req routeapp.DeliveryIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	delivery, err := h.deliveryService.MarkIncident(c.Request.Context(), tenantID, routeID, deliveryID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, delivery)
}

// SkipDelivery marks a stop as not delivered
func (h *RouteHandler) SkipDelivery(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	deliveryID, err := uuid.Parse(c.Param("deliveryId"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	delivery, err := h.deliveryService.MarkNotDelivered(c.Request.Context(), tenantID, routeID, deliveryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, delivery)
}
