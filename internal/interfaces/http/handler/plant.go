package handler

import (
	registryapp "github.com/fleet/backend/internal/application/registry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlantHandler handles plant registry API endpoints
type PlantHandler struct {
	BaseHandler
	plantService *registryapp.PlantService
}

// NewPlantHandler creates a new PlantHandler
func NewPlantHandler(plantService *registryapp.PlantService) *PlantHandler {
	return &PlantHandler{
		plantService: plantService,
	}
}

// Create registers a new plant
func (h *PlantHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req registryapp.CreatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plant, err := h.plantService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plant)
}

// GetByID retrieves a plant by its ID
func (h *PlantHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	plantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plant ID format")
		return
	}

	plant, err := h.plantService.GetByID(c.Request.Context(), tenantID, plantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plant)
}

// List retrieves a paginated list of plants
func (h *PlantHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter registryapp.ListFilter
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

	plants, total, err := h.plantService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, plants, total, filter.Page, filter.PageSize)
}

// Update updates a plant's name or location
func (h *PlantHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	plantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plant ID format")
		return
	}

	var req registryapp.UpdatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plant, err := h.plantService.Update(c.Request.Context(), tenantID, plantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plant)
}

// Deactivate deactivates a plant. Plants with open routes cannot be deactivated.
func (h *PlantHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	plantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plant ID format")
		return
	}

	plant, err := h.plantService.Deactivate(c.Request.Context(), tenantID, plantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plant)
}

// Activate reactivates a plant
func (h *PlantHandler) Activate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	plantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plant ID format")
		return
	}

	plant, err := h.plantService.Activate(c.Request.Context(), tenantID, plantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plant)
}
