package rides

import (
	"github.com/gin-gonic/gin"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/middleware"
)

// Handler handles HTTP requests for the ride fare lifecycle
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new rides handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers ride lifecycle routes. Accept and complete are
// driven by drivers or the dispatch service. terminal runs ahead of the
// cancel and complete handlers, e.g. for idempotent replay.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, terminal ...gin.HandlerFunc) {
	drivers := middleware.RequireRole(middleware.RoleDriver, middleware.RoleService, middleware.RoleAdmin)

	rides := rg.Group("/rides/:id")
	{
		rides.POST("/accept", drivers, h.AcceptRide)
		rides.POST("/cancel", chain(terminal, h.CancelRide)...)
		rides.POST("/complete", chain(append([]gin.HandlerFunc{drivers}, terminal...), h.CompleteRide)...)
		rides.GET("/fare", h.GetFare)
	}
}

// reportsTime reports whether the caller may say when a lifecycle event
// happened. Only dispatch and admins may; everyone else is timed by the
// service clock.
func reportsTime(c *gin.Context) bool {
	role, _ := middleware.GetUserRole(c)
	return role == middleware.RoleService || role == middleware.RoleAdmin
}

func chain(pre []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+1)
	return append(append(out, pre...), h)
}

// AcceptRide locks the fare of a ride at driver acceptance
// POST /api/v1/rides/:id/accept
func (h *Handler) AcceptRide(c *gin.Context) {
	rideID, ok := common.ParseUUIDParam(c, "id", "ride ID")
	if !ok {
		return
	}
	var req AcceptRequest
	if !common.BindJSON(c, &req) {
		return
	}
	if !reportsTime(c) {
		req.AcceptedAt = nil
	}

	lock, err := h.service.AcceptRide(c.Request.Context(), rideID, &req)
	if common.HandleServiceError(c, err, "failed to lock fare") {
		return
	}
	common.SuccessResponse(c, lock)
}

// CancelRide cancels a ride and charges the cancelling party
// POST /api/v1/rides/:id/cancel
func (h *Handler) CancelRide(c *gin.Context) {
	rideID, ok := common.ParseUUIDParam(c, "id", "ride ID")
	if !ok {
		return
	}
	var req CancelRequest
	if !common.BindJSON(c, &req) {
		return
	}
	if !reportsTime(c) {
		req.CancelledAt = nil
	}

	result, err := h.service.CancelRide(c.Request.Context(), rideID, &req)
	if common.HandleServiceError(c, err, "failed to cancel ride") {
		return
	}
	common.SuccessResponse(c, result)
}

// CompleteRide completes a ride and splits its fare. The body is optional.
// POST /api/v1/rides/:id/complete
func (h *Handler) CompleteRide(c *gin.Context) {
	rideID, ok := common.ParseUUIDParam(c, "id", "ride ID")
	if !ok {
		return
	}
	var req CompleteRequest
	if c.Request.ContentLength > 0 && !common.BindJSON(c, &req) {
		return
	}
	if !reportsTime(c) {
		req.CompletedAt = nil
	}

	result, err := h.service.CompleteRide(c.Request.Context(), rideID, &req)
	if common.HandleServiceError(c, err, "failed to complete ride") {
		return
	}
	common.SuccessResponse(c, result)
}

// GetFare returns the locked fare of a ride
// GET /api/v1/rides/:id/fare
func (h *Handler) GetFare(c *gin.Context) {
	rideID, ok := common.ParseUUIDParam(c, "id", "ride ID")
	if !ok {
		return
	}

	lock, err := h.service.GetFare(c.Request.Context(), rideID)
	if common.HandleServiceError(c, err, "failed to get fare") {
		return
	}
	common.SuccessResponse(c, lock)
}
