package handler

import (
	anomalyapp "github.com/fleet/backend/internal/application/anomaly"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnomalyHandler handles anomaly review API endpoints
type AnomalyHandler struct {
	BaseHandler
	anomalyService *anomalyapp.Service
}

// NewAnomalyHandler creates a new AnomalyHandler
func NewAnomalyHandler(anomalyService *anomalyapp.Service) *AnomalyHandler {
	return &AnomalyHandler{
		anomalyService: anomalyService,
	}
}

// Create files a manual anomaly, e.g. damage noticed outside a route
func (h *AnomalyHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req anomalyapp.CreateAnomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	anomaly, err := h.anomalyService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, anomaly)
}

// GetByID retrieves an anomaly by its ID
func (h *AnomalyHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	anomalyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid anomaly ID format")
		return
	}

	anomaly, err := h.anomalyService.GetByID(c.Request.Context(), tenantID, anomalyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, anomaly)
}

// List retrieves a paginated, filterable list of anomalies
func (h *AnomalyHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter anomalyapp.AnomalyListFilter
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

	anomalies, total, err := h.anomalyService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, anomalies, total, filter.Page, filter.PageSize)
}

// ListOpen retrieves all anomalies still awaiting review
func (h *AnomalyHandler) ListOpen(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	anomalies, err := h.anomalyService.ListOpen(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, anomalies)
}

// ListByRoute retrieves all anomalies raised against one route
func (h *AnomalyHandler) ListByRoute(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	routeID, err := uuid.Parse(c.Param("routeId"))
	if err != nil {
		h.BadRequest(c, "Invalid route ID format")
		return
	}

	anomalies, err := h.anomalyService.ListByRoute(c.Request.Context(), tenantID, routeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, anomalies)
}

// StartReview claims an anomaly for review by the authenticated user
func (h *AnomalyHandler) StartReview(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	anomalyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid anomaly ID format")
		return
	}

	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Reviewer identity required")
		return
	}

	anomaly, err := h.anomalyService.StartReview(c.Request.Context(), tenantID, anomalyID, reviewerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, anomaly)
}

// Resolve closes an anomaly with a resolution text
func (h *AnomalyHandler) Resolve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	anomalyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid anomaly ID format")
		return
	}

	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Reviewer identity required")
		return
	}

	var req anomalyapp.ResolveAnomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	anomaly, err := h.anomalyService.Resolve(c.Request.Context(), tenantID, anomalyID, reviewerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, anomaly)
}

// Dismiss closes an anomaly as not actionable
func (h *AnomalyHandler) Dismiss(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	anomalyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid anomaly ID format")
		return
	}

	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Reviewer identity required")
		return
	}

	var req anomalyapp.DismissAnomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	anomaly, err := h.anomalyService.Dismiss(c.Request.Context(), tenantID, anomalyID, reviewerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, anomaly)
}
