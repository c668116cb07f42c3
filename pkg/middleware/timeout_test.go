package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		name       string
		timeout    time.Duration
		work       time.Duration
		wantStatus int
	}{
		{name: "completes in time", timeout: time.Second, work: 0, wantStatus: http.StatusOK},
		{name: "slow handler gets 504", timeout: 50 * time.Millisecond, work: 300 * time.Millisecond, wantStatus: http.StatusGatewayTimeout},
		{name: "disabled bound", timeout: 0, work: 60 * time.Millisecond, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.work > 0 && testing.Short() {
				t.Skip("skipping timing test in short mode")
			}

			r := gin.New()
			r.Use(RequestTimeout(tt.timeout))
			r.GET("/fare", func(c *gin.Context) {
				time.Sleep(tt.work)
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fare", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusGatewayTimeout {
				assert.Contains(t, w.Body.String(), "request timeout")
			}
		})
	}
}
