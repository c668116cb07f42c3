package cancellation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/richxcame/logistics-pricing/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK SERVICE
// ============================================================================

// MockService implements ServiceInterface for handler tests
type MockService struct {
	mock.Mock
}

func (m *MockService) Charge(ctx context.Context, in ChargeInput) (*Charge, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Charge), args.Error(1)
}

func (m *MockService) GetCharge(ctx context.Context, rideID uuid.UUID) (*Charge, error) {
	args := m.Called(ctx, rideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Charge), args.Error(1)
}

func (m *MockService) Preview(ctx context.Context, req *PreviewRequest) (*PreviewResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PreviewResponse), args.Error(1)
}

func (m *MockService) GetStats(ctx context.Context, from, to time.Time) (*ChargeStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChargeStats), args.Error(1)
}

// ============================================================================
// TEST HELPERS
// ============================================================================

func setupTestRouter(svc ServiceInterface, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		middleware.SetUser(c, uuid.New(), role)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// ============================================================================
// TESTS
// ============================================================================

func TestHandler_Preview(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleRider)

	mockSvc.On("Preview", mock.Anything, mock.MatchedBy(func(req *PreviewRequest) bool {
		return req.Party == pricing.PartyClient && req.EstimatedFare.Equal(d("30"))
	})).Return(&PreviewResponse{FeeDecision: FeeDecision{Party: pricing.PartyClient, Fee: d("6.00")}, SnapshotVersion: 2}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/cancellations/preview", map[string]interface{}{
		"party":           "client",
		"elapsed_minutes": 10,
		"estimated_fare":  30,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 6.0, data["fee"])
	assert.Equal(t, 2.0, data["snapshot_version"])
	mockSvc.AssertExpectations(t)
}

func TestHandler_Preview_InvalidParty(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleRider)

	w := doRequest(router, http.MethodPost, "/api/v1/cancellations/preview", map[string]interface{}{
		"party":           "system",
		"elapsed_minutes": 10,
		"estimated_fare":  30,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything)
}

func TestHandler_GetCharge(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleDriver)

	rideID := uuid.New()
	missing := uuid.New()
	mockSvc.On("GetCharge", mock.Anything, rideID).Return(&Charge{RideID: rideID, Fee: d("6.00")}, nil)
	mockSvc.On("GetCharge", mock.Anything, missing).Return(nil, ToAppError(ErrChargeNotFound))

	w := doRequest(router, http.MethodGet, "/api/v1/rides/"+rideID.String()+"/cancellation", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/rides/"+missing.String()+"/cancellation", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/rides/abc/cancellation", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetStats(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleAdmin)

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC)
	mockSvc.On("GetStats", mock.Anything, mock.MatchedBy(from.Equal), mock.MatchedBy(to.Equal)).
		Return(&ChargeStats{From: from, To: to, Total: 4}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/cancellations/stats?from=2026-10-01T00:00:00Z&to=2026-10-08T00:00:00Z", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4.0, parseResponse(t, w)["data"].(map[string]interface{})["total"])
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetStats_RequiresAdmin(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleRider)

	w := doRequest(router, http.MethodGet, "/api/v1/cancellations/stats", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_GetStats_BadTime(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleAdmin)

	w := doRequest(router, http.MethodGet, "/api/v1/cancellations/stats?from=last-week", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
