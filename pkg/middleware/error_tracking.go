package middleware

import (
	"fmt"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/logistics-pricing/pkg/errors"
)

// SentryMiddleware attaches a Sentry hub to every request and reports panics.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// ErrorReporter sends unexpected errors recorded on the gin context to Sentry.
// It must run after SentryMiddleware and CorrelationID.
func ErrorReporter() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		for _, ginErr := range c.Errors {
			if !errors.ShouldReportError(ginErr.Err, status) {
				continue
			}
			errors.CaptureError(c.Request.Context(), ginErr.Err, map[string]string{
				"http.method":      c.Request.Method,
				"http.route":       c.FullPath(),
				"http.status_code": fmt.Sprintf("%d", status),
			})
		}
	}
}
