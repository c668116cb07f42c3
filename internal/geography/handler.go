package geography

import (
	"github.com/gin-gonic/gin"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/middleware"
)

// Handler handles HTTP requests for cities
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new geography handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers city routes. Writes require the admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cities", h.ListCities)
	rg.GET("/cities/:id", h.GetCity)
	rg.PUT("/cities/:id", middleware.RequireAdmin(), h.UpsertCity)
	rg.PUT("/cities/:id/representative", middleware.RequireAdmin(), h.SetRepresentative)
	rg.DELETE("/cities/:id/representative", middleware.RequireAdmin(), h.RemoveRepresentative)
}

// ListCities returns all cities
// GET /api/v1/cities
func (h *Handler) ListCities(c *gin.Context) {
	cities, err := h.service.ListCities(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to list cities") {
		return
	}
	common.SuccessResponse(c, cities)
}

// GetCity returns a city by ID
// GET /api/v1/cities/:id
func (h *Handler) GetCity(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "city ID")
	if !ok {
		return
	}

	city, err := h.service.GetCity(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get city") {
		return
	}
	common.SuccessResponse(c, city)
}

// UpsertCity creates or replaces a city
// PUT /api/v1/cities/:id
func (h *Handler) UpsertCity(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "city ID")
	if !ok {
		return
	}
	var req CityRequest
	if !common.BindJSON(c, &req) {
		return
	}

	city, err := h.service.UpsertCity(c.Request.Context(), id, &req, actor(c))
	if common.HandleServiceError(c, err, "failed to update city") {
		return
	}
	common.SuccessResponse(c, city)
}

// SetRepresentative assigns a city's representative
// PUT /api/v1/cities/:id/representative
func (h *Handler) SetRepresentative(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "city ID")
	if !ok {
		return
	}
	var req RepresentativeRequest
	if !common.BindJSON(c, &req) {
		return
	}

	city, err := h.service.SetRepresentative(c.Request.Context(), id, &req, actor(c))
	if common.HandleServiceError(c, err, "failed to set representative") {
		return
	}
	common.SuccessResponse(c, city)
}

// RemoveRepresentative unassigns a city's representative
// DELETE /api/v1/cities/:id/representative
func (h *Handler) RemoveRepresentative(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "city ID")
	if !ok {
		return
	}

	city, err := h.service.RemoveRepresentative(c.Request.Context(), id, actor(c))
	if common.HandleServiceError(c, err, "failed to remove representative") {
		return
	}
	common.SuccessResponse(c, city)
}

func actor(c *gin.Context) string {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return ""
	}
	return userID.String()
}
