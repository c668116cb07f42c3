package common

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/pkg/logger"
	"go.uber.org/zap"
)

// HandleServiceError renders err and reports whether a response was sent.
//
// Usage:
//
//	quote, err := h.service.Estimate(ctx, req)
//	if common.HandleServiceError(c, err, "failed to estimate fare") {
//	    return
//	}
func HandleServiceError(c *gin.Context, err error, fallbackMessage string) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		AppErrorResponse(c, appErr)
		return true
	}

	logger.ErrorContext(c.Request.Context(), fallbackMessage,
		zap.Error(err),
	)
	// surfaced to the sentry middleware
	_ = c.Error(err)

	ErrorResponse(c, http.StatusInternalServerError, fallbackMessage)
	return true
}

// ParseUUIDParam parses a UUID from a URL parameter.
// Returns the UUID and true on success, or sends an error response and returns false on failure.
func ParseUUIDParam(c *gin.Context, paramName, displayName string) (uuid.UUID, bool) {
	paramValue := c.Param(paramName)
	if paramValue == "" {
		ErrorResponse(c, http.StatusBadRequest, displayName+" is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(paramValue)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid "+displayName)
		return uuid.Nil, false
	}

	return id, true
}

// ParseUUIDQuery parses a UUID from a query parameter.
// An absent optional parameter yields uuid.Nil and true.
func ParseUUIDQuery(c *gin.Context, paramName, displayName string, required bool) (uuid.UUID, bool) {
	paramValue := c.Query(paramName)
	if paramValue == "" {
		if required {
			ErrorResponse(c, http.StatusBadRequest, displayName+" is required")
			return uuid.Nil, false
		}
		return uuid.Nil, true
	}

	id, err := uuid.Parse(paramValue)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid "+displayName)
		return uuid.Nil, false
	}

	return id, true
}

// ParseTimeQuery parses an RFC 3339 timestamp from a query parameter.
// An absent parameter yields fallback and true.
func ParseTimeQuery(c *gin.Context, paramName string, fallback time.Time) (time.Time, bool) {
	paramValue := c.Query(paramName)
	if paramValue == "" {
		return fallback, true
	}

	t, err := time.Parse(time.RFC3339, paramValue)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid "+paramName+", expected RFC 3339")
		return time.Time{}, false
	}

	return t, true
}

// BindJSON binds JSON request body and sends error response on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
