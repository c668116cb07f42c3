package pricing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/middleware"
)

// Handler handles HTTP requests for pricing
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new pricing handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers pricing routes on an authenticated group.
// Configuration writes require the admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	pricing := rg.Group("/pricing")
	{
		pricing.GET("/config", h.GetConfig)
		pricing.PUT("/config", middleware.RequireAdmin(), h.UpdateConfig)
		pricing.POST("/estimate", h.Estimate)

		pricing.GET("", h.ListRules)
		pricing.GET("/:id", h.GetRule)
		pricing.POST("", middleware.RequireAdmin(), h.CreateRule)
		pricing.PUT("/:id", middleware.RequireAdmin(), h.UpdateRule)
		pricing.DELETE("/:id", middleware.RequireAdmin(), h.DeleteRule)
	}

	rg.GET("/platform-config", h.GetPlatformConfig)
	rg.PUT("/platform-config", middleware.RequireAdmin(), h.UpdatePlatformConfig)
}

// GetConfig returns the current pricing configuration
// GET /api/v1/pricing/config
func (h *Handler) GetConfig(c *gin.Context) {
	config, err := h.service.GetConfig(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to load pricing config") {
		return
	}
	common.SuccessResponse(c, config)
}

// UpdateConfig replaces the pricing configuration
// PUT /api/v1/pricing/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if !common.BindJSON(c, &req) {
		return
	}

	config, err := h.service.UpdateConfig(c.Request.Context(), &req, actor(c))
	if common.HandleServiceError(c, err, "failed to update pricing config") {
		return
	}
	common.SuccessResponse(c, config)
}

// Estimate returns a fare estimate
// POST /api/v1/pricing/estimate
func (h *Handler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if !common.BindJSON(c, &req) {
		return
	}

	quote, err := h.service.Estimate(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to calculate estimate") {
		return
	}
	common.SuccessResponse(c, quote)
}

// ListRules lists pricing rules
// GET /api/v1/pricing?city_id=&vehicle_category=&purpose_id=
func (h *Handler) ListRules(c *gin.Context) {
	cityID, ok := common.ParseUUIDQuery(c, "city_id", "city ID", false)
	if !ok {
		return
	}
	purposeID, ok := common.ParseUUIDQuery(c, "purpose_id", "purpose ID", false)
	if !ok {
		return
	}
	vehicle := VehicleCategory(c.Query("vehicle_category"))
	if vehicle != "" && !vehicle.Valid() {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid vehicle category")
		return
	}

	rules, err := h.service.ListRules(c.Request.Context(), RuleFilter{
		CityID:          cityID,
		VehicleCategory: vehicle,
		PurposeID:       purposeID,
	})
	if common.HandleServiceError(c, err, "failed to list pricing rules") {
		return
	}
	common.SuccessResponse(c, rules)
}

// GetRule returns one pricing rule
// GET /api/v1/pricing/:id
func (h *Handler) GetRule(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "rule ID")
	if !ok {
		return
	}

	rule, err := h.service.GetRule(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get pricing rule") {
		return
	}
	common.SuccessResponse(c, rule)
}

// CreateRule creates a pricing rule
// POST /api/v1/pricing
func (h *Handler) CreateRule(c *gin.Context) {
	var req RuleRequest
	if !common.BindJSON(c, &req) {
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), &req, actor(c))
	if common.HandleServiceError(c, err, "failed to create pricing rule") {
		return
	}
	common.CreatedResponse(c, rule)
}

// UpdateRule replaces a pricing rule
// PUT /api/v1/pricing/:id
func (h *Handler) UpdateRule(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "rule ID")
	if !ok {
		return
	}
	var req RuleRequest
	if !common.BindJSON(c, &req) {
		return
	}

	rule, err := h.service.UpdateRule(c.Request.Context(), id, &req, actor(c))
	if common.HandleServiceError(c, err, "failed to update pricing rule") {
		return
	}
	common.SuccessResponse(c, rule)
}

// DeleteRule deletes a pricing rule
// DELETE /api/v1/pricing/:id
func (h *Handler) DeleteRule(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "rule ID")
	if !ok {
		return
	}

	err := h.service.DeleteRule(c.Request.Context(), id, actor(c))
	if common.HandleServiceError(c, err, "failed to delete pricing rule") {
		return
	}
	common.SuccessResponse(c, gin.H{"message": "pricing rule deleted"})
}

// GetPlatformConfig returns the platform settings
// GET /api/v1/platform-config
func (h *Handler) GetPlatformConfig(c *gin.Context) {
	config, err := h.service.GetPlatformConfig(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to load platform config") {
		return
	}
	common.SuccessResponse(c, config)
}

// UpdatePlatformConfig replaces the platform settings
// PUT /api/v1/platform-config
func (h *Handler) UpdatePlatformConfig(c *gin.Context) {
	var req PlatformConfigRequest
	if !common.BindJSON(c, &req) {
		return
	}

	config, err := h.service.UpdatePlatformConfig(c.Request.Context(), &req, actor(c))
	if common.HandleServiceError(c, err, "failed to update platform config") {
		return
	}
	common.SuccessResponse(c, config)
}

// actor names the authenticated user for audit logs and events.
func actor(c *gin.Context) string {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return ""
	}
	return userID.String()
}
