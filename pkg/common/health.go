package common

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus represents the status of a single health check
type CheckStatus struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// HealthCheckFunc probes one dependency.
type HealthCheckFunc func(ctx context.Context) error

var startTime = time.Now()

// LivenessProbe always answers 200 while the process serves HTTP.
func LivenessProbe(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "alive",
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
		})
	}
}

// ReadinessProbe runs every dependency check in parallel and answers 503 if any fails.
func ReadinessProbe(serviceName, version string, timeout time.Duration, checks map[string]HealthCheckFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		var (
			mu      sync.Mutex
			wg      sync.WaitGroup
			results = make(map[string]CheckStatus, len(checks))
			ready   = true
		)

		for name, check := range checks {
			wg.Add(1)
			go func(name string, check HealthCheckFunc) {
				defer wg.Done()
				start := time.Now()
				err := check(ctx)

				status := CheckStatus{Status: "healthy", Duration: time.Since(start).String()}
				if err != nil {
					status.Status = "unhealthy"
					status.Message = err.Error()
				}

				mu.Lock()
				results[name] = status
				if err != nil {
					ready = false
				}
				mu.Unlock()
			}(name, check)
		}
		wg.Wait()

		statusCode := http.StatusOK
		status := "ready"
		if !ready {
			statusCode = http.StatusServiceUnavailable
			status = "not ready"
		}

		c.JSON(statusCode, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
			Checks:    results,
		})
	}
}
