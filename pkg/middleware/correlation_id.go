package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/pkg/logger"
)

const (
	// CorrelationIDHeader carries the request's correlation ID in and out
	CorrelationIDHeader = "X-Request-ID"
	// CorrelationIDKey is the gin context key for the correlation ID
	CorrelationIDKey = "correlation_id"

	legacyCorrelationIDHeader = "X-Correlation-ID"
	ridesRoutePrefix          = "/rides/:id"
)

// CorrelationID tags the request context with a correlation ID, reusing the
// caller's when it is a UUID, and with the ride ID on ride routes so service
// logs can be joined per ride.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := incomingCorrelationID(c)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(CorrelationIDKey, correlationID)
		c.Writer.Header().Set(CorrelationIDHeader, correlationID)

		ctx := logger.ContextWithCorrelationID(c.Request.Context(), correlationID)
		if rideID := rideIDParam(c); rideID != "" {
			ctx = logger.ContextWithRideID(ctx, rideID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func incomingCorrelationID(c *gin.Context) string {
	for _, header := range []string{CorrelationIDHeader, legacyCorrelationIDHeader} {
		id := strings.TrimSpace(c.GetHeader(header))
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return ""
}

func rideIDParam(c *gin.Context) string {
	if !strings.Contains(c.FullPath(), ridesRoutePrefix) {
		return ""
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// GetCorrelationID extracts correlation ID from gin context
func GetCorrelationID(c *gin.Context) string {
	if id, ok := c.Get(CorrelationIDKey); ok {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return logger.CorrelationIDFromContext(c.Request.Context())
}
