package earnings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

func (m *MockService) RecordSplit(ctx context.Context, in SplitInput) (*RevenueSplit, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RevenueSplit), args.Error(1)
}

func (m *MockService) GetSplit(ctx context.Context, rideID uuid.UUID) (*RevenueSplit, error) {
	args := m.Called(ctx, rideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RevenueSplit), args.Error(1)
}

func (m *MockService) GetPayoutSummary(ctx context.Context, cityID uuid.UUID, from, to time.Time) (*PayoutSummary, error) {
	args := m.Called(ctx, cityID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PayoutSummary), args.Error(1)
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

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response["data"].(map[string]interface{})
}

// ============================================================================
// TESTS
// ============================================================================

func TestHandler_GetSplit(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleDriver)

	rideID := uuid.New()
	mockSvc.On("GetSplit", mock.Anything, rideID).Return(&RevenueSplit{
		RideID: rideID,
		Breakdown: Breakdown{
			Fare:                d("100.00"),
			PlatformFeeAmount:   d("15.00"),
			DriverEarning:       d("85.00"),
			RepresentativeShare: d("7.50"),
			PlatformNet:         d("7.50"),
		},
		Currency: "BRL",
	}, nil)

	w := doGet(router, "/api/v1/rides/"+rideID.String()+"/revenue-split")

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseData(t, w)
	assert.Equal(t, 85.0, data["driver_earning"])
	assert.Equal(t, 7.5, data["platform_net"])
	assert.Equal(t, rideID.String(), data["ride_id"])
}

func TestHandler_GetSplit_Errors(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleDriver)

	missing := uuid.New()
	mockSvc.On("GetSplit", mock.Anything, missing).Return(nil, ToAppError(ErrSplitNotFound))

	w := doGet(router, "/api/v1/rides/"+missing.String()+"/revenue-split")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doGet(router, "/api/v1/rides/not-a-uuid/revenue-split")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetPayoutSummary(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleAdmin)

	cityID := uuid.New()
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	mockSvc.On("GetPayoutSummary", mock.Anything, cityID, mock.MatchedBy(from.Equal), mock.MatchedBy(to.Equal)).
		Return(&PayoutSummary{CityID: cityID, CityTotals: CityTotals{Rides: 3}}, nil)

	w := doGet(router, "/api/v1/cities/"+cityID.String()+"/revenue-splits?from=2026-09-01T00:00:00Z&to=2026-10-01T00:00:00Z")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, parseData(t, w)["rides"])
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetPayoutSummary_DefaultWindow(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleAdmin)

	cityID := uuid.New()
	mockSvc.On("GetPayoutSummary", mock.Anything, cityID, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			from, to := args.Get(2).(time.Time), args.Get(3).(time.Time)
			assert.Equal(t, defaultSummaryWindow, to.Sub(from))
		}).
		Return(&PayoutSummary{CityID: cityID}, nil)

	w := doGet(router, "/api/v1/cities/"+cityID.String()+"/revenue-splits")
	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetPayoutSummary_RequiresAdmin(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleDriver)

	w := doGet(router, "/api/v1/cities/"+uuid.New().String()+"/revenue-splits")
	assert.Equal(t, http.StatusForbidden, w.Code)
	mockSvc.AssertNotCalled(t, "GetPayoutSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_GetPayoutSummary_BadQuery(t *testing.T) {
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, middleware.RoleAdmin)

	w := doGet(router, "/api/v1/cities/"+uuid.New().String()+"/revenue-splits?to=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
