package cancellation

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/middleware"
)

const defaultStatsWindow = 30 * 24 * time.Hour

// Handler handles HTTP requests for cancellations
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new cancellation handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers cancellation routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cancellations/preview", h.Preview)
	rg.GET("/cancellations/stats", middleware.RequireAdmin(), h.GetStats)
	rg.GET("/rides/:id/cancellation", h.GetCharge)
}

// Preview returns the fee a cancellation would cost right now
// POST /api/v1/cancellations/preview
func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if !common.BindJSON(c, &req) {
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to preview cancellation fee") {
		return
	}
	common.SuccessResponse(c, preview)
}

// GetCharge returns the charge recorded for a cancelled ride
// GET /api/v1/rides/:id/cancellation
func (h *Handler) GetCharge(c *gin.Context) {
	rideID, ok := common.ParseUUIDParam(c, "id", "ride ID")
	if !ok {
		return
	}

	charge, err := h.service.GetCharge(c.Request.Context(), rideID)
	if common.HandleServiceError(c, err, "failed to get cancellation charge") {
		return
	}
	common.SuccessResponse(c, charge)
}

// GetStats returns ledger totals for a period, the last 30 days by default
// GET /api/v1/cancellations/stats?from=&to=
func (h *Handler) GetStats(c *gin.Context) {
	now := time.Now().UTC()
	to, ok := common.ParseTimeQuery(c, "to", now)
	if !ok {
		return
	}
	from, ok := common.ParseTimeQuery(c, "from", to.Add(-defaultStatsWindow))
	if !ok {
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), from, to)
	if common.HandleServiceError(c, err, "failed to get cancellation stats") {
		return
	}
	common.SuccessResponse(c, stats)
}
