package earnings

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/middleware"
)

const defaultSummaryWindow = 30 * 24 * time.Hour

// Handler handles HTTP requests for revenue splits
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new earnings handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ========================================
// ROUTE REGISTRATION
// ========================================

// RegisterRoutes registers revenue split routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rides/:id/revenue-split", h.GetSplit)
	rg.GET("/cities/:id/revenue-splits", middleware.RequireAdmin(), h.GetPayoutSummary)
}

// GetSplit returns the split recorded for a completed ride
// GET /api/v1/rides/:id/revenue-split
func (h *Handler) GetSplit(c *gin.Context) {
	rideID, ok := common.ParseUUIDParam(c, "id", "ride ID")
	if !ok {
		return
	}

	split, err := h.service.GetSplit(c.Request.Context(), rideID)
	if common.HandleServiceError(c, err, "failed to get revenue split") {
		return
	}
	common.SuccessResponse(c, split)
}

// GetPayoutSummary returns a city's split totals, the last 30 days by default
// GET /api/v1/cities/:id/revenue-splits?from=&to=
func (h *Handler) GetPayoutSummary(c *gin.Context) {
	cityID, ok := common.ParseUUIDParam(c, "id", "city ID")
	if !ok {
		return
	}
	to, ok := common.ParseTimeQuery(c, "to", time.Now().UTC())
	if !ok {
		return
	}
	from, ok := common.ParseTimeQuery(c, "from", to.Add(-defaultSummaryWindow))
	if !ok {
		return
	}

	summary, err := h.service.GetPayoutSummary(c.Request.Context(), cityID, from, to)
	if common.HandleServiceError(c, err, "failed to get revenue splits") {
		return
	}
	common.SuccessResponse(c, summary)
}
