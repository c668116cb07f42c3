package geography

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/eventbus"
	"github.com/richxcame/logistics-pricing/pkg/kvstore"
	"github.com/richxcame/logistics-pricing/pkg/money"
	redisclient "github.com/richxcame/logistics-pricing/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Helpers
// ============================================================================

// MockPublisher implements eventbus.Publisher for testing
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, event *eventbus.Event) error {
	args := m.Called(ctx, subject, event)
	return args.Error(0)
}

func newTestService(t *testing.T) (*Service, *pricing.SnapshotStore, *MockPublisher) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := pricing.NewSnapshotStore(
		pricing.NewRepository(kvstore.New(redisclient.Wrap(rdb), "test")),
		pricing.StoreOptions{RefreshInterval: time.Minute, WriteRetries: 3, Currency: "BRL"},
	)
	publisher := new(MockPublisher)
	svc := NewService(store, publisher)
	svc.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	return svc, store, publisher
}

func d(s string) decimal.Decimal {
	return money.MustParse(s)
}

func cityRequest(representative string, paymentDay int) *CityRequest {
	pct := d(representative)
	return &CityRequest{
		Name:     "Campinas",
		Timezone: "America/Sao_Paulo",
		RevenueSharing: &RevenueSharingRequest{
			RepresentativePercentage: &pct,
			PaymentDay:               paymentDay,
		},
	}
}

func representativeRequest(document string) *RepresentativeRequest {
	return &RepresentativeRequest{
		Name:     "Ana Souza",
		Document: document,
		Email:    "ana@example.com",
		Bank:     pricing.BankAccount{BankName: "Banco do Brasil", Agency: "1234", Account: "56789-0"},
	}
}

func appErrorCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "want AppError, got %v", err)
	return appErr.Code
}

// ============================================================================
// UpsertCity
// ============================================================================

func TestService_UpsertCity_DerivesPlatformPercentage(t *testing.T) {
	svc, store, publisher := newTestService(t)
	ctx := context.Background()
	cityID := uuid.New()

	var published *eventbus.Event
	publisher.On("Publish", mock.Anything, eventbus.SubjectCityUpdated, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(2).(*eventbus.Event) }).
		Return(nil).Once()

	city, err := svc.UpsertCity(ctx, cityID, cityRequest("40", 10), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, cityID, city.ID)
	assert.True(t, city.RevenueSharing.Configured)
	assert.True(t, d("60").Equal(city.RevenueSharing.PlatformPercentage))
	assert.Equal(t, 10, city.RevenueSharing.PaymentDay)

	snapshot, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.Version)
	require.Len(t, snapshot.Cities, 1)

	require.NotNil(t, published)
	var data eventbus.ConfigUpdatedData
	require.NoError(t, json.Unmarshal(published.Data, &data))
	assert.Equal(t, pricing.SectionCities, data.Section)
	assert.Equal(t, "admin-1", data.UpdatedBy)
	publisher.AssertExpectations(t)
}

func TestService_UpsertCity_KeepsSharingWhenOmitted(t *testing.T) {
	svc, _, publisher := newTestService(t)
	ctx := context.Background()
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	cityID := uuid.New()

	_, err := svc.UpsertCity(ctx, cityID, cityRequest("25", 5), "admin-1")
	require.NoError(t, err)

	city, err := svc.UpsertCity(ctx, cityID, &CityRequest{Name: "Campinas SP", Timezone: "America/Sao_Paulo"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Campinas SP", city.Name)
	assert.True(t, d("25").Equal(city.RevenueSharing.RepresentativePercentage))

	list, err := svc.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, int64(2), list.Version)
}

func TestService_UpsertCity_NewCityWithoutSharingIsUnconfigured(t *testing.T) {
	svc, store, publisher := newTestService(t)
	ctx := context.Background()
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	city, err := svc.UpsertCity(ctx, uuid.New(), &CityRequest{Name: "Recife", Timezone: "America/Recife"}, "admin-1")
	require.NoError(t, err)
	assert.False(t, city.RevenueSharing.Configured)
	assert.True(t, money.Hundred().Equal(city.RevenueSharing.PlatformPercentage))

	_, err = svc.SetRepresentative(ctx, city.ID, representativeRequest("111"), "admin-1")
	require.NoError(t, err)

	snapshot, err := store.Current(ctx)
	require.NoError(t, err)
	terms := snapshot.RevenueTermsFor(city.ID)
	assert.True(t, snapshot.Platform.DefaultRepresentativePercentage.Equal(terms.RepresentativePercentage))
}

func TestService_UpsertCity_RejectsPlatformPercentage(t *testing.T) {
	svc, store, publisher := newTestService(t)
	ctx := context.Background()

	req := cityRequest("40", 10)
	platform := d("60")
	req.RevenueSharing.PlatformPercentage = &platform

	_, err := svc.UpsertCity(ctx, uuid.New(), req, "admin-1")
	assert.Equal(t, http.StatusUnprocessableEntity, appErrorCode(t, err))

	violations, ok := pricing.ViolationsOf(err)
	require.True(t, ok)
	assert.Contains(t, violations.Fields(), "revenue_sharing.platform_percentage")

	snapshot, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Cities)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpsertCity_RejectsOutOfRangeShare(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpsertCity(context.Background(), uuid.New(), cityRequest("120", 10), "admin-1")
	assert.Equal(t, http.StatusUnprocessableEntity, appErrorCode(t, err))
}

func TestService_UpsertCity_RejectsUnknownTimezone(t *testing.T) {
	svc, _, publisher := newTestService(t)

	req := cityRequest("40", 10)
	req.Timezone = "Mars/Olympus_Mons"
	_, err := svc.UpsertCity(context.Background(), uuid.New(), req, "admin-1")
	assert.Equal(t, http.StatusUnprocessableEntity, appErrorCode(t, err))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

// ============================================================================
// Representatives
// ============================================================================

func TestService_SetRepresentative_FeedsRevenueTerms(t *testing.T) {
	svc, store, publisher := newTestService(t)
	ctx := context.Background()
	publisher.On("Publish", mock.Anything, eventbus.SubjectCityUpdated, mock.Anything).Return(nil)
	cityID := uuid.New()

	_, err := svc.UpsertCity(ctx, cityID, cityRequest("40", 10), "admin-1")
	require.NoError(t, err)

	city, err := svc.SetRepresentative(ctx, cityID, representativeRequest("123.456.789-00"), "admin-1")
	require.NoError(t, err)
	require.NotNil(t, city.Representative)
	firstID := city.Representative.ID

	snapshot, err := store.Current(ctx)
	require.NoError(t, err)
	terms := snapshot.RevenueTermsFor(cityID)
	require.NotNil(t, terms.RepresentativeID)
	assert.Equal(t, firstID, *terms.RepresentativeID)
	assert.True(t, d("40").Equal(terms.RepresentativePercentage))

	// same document keeps the id, a new document is a new representative
	city, err = svc.SetRepresentative(ctx, cityID, representativeRequest("123.456.789-00"), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, firstID, city.Representative.ID)

	city, err = svc.SetRepresentative(ctx, cityID, representativeRequest("987.654.321-00"), "admin-1")
	require.NoError(t, err)
	assert.NotEqual(t, firstID, city.Representative.ID)
}

func TestService_SetRepresentative_UnknownCity(t *testing.T) {
	svc, _, publisher := newTestService(t)

	_, err := svc.SetRepresentative(context.Background(), uuid.New(), representativeRequest("1"), "admin-1")
	assert.Equal(t, http.StatusNotFound, appErrorCode(t, err))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RemoveRepresentative(t *testing.T) {
	svc, store, publisher := newTestService(t)
	ctx := context.Background()
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	cityID := uuid.New()

	_, err := svc.UpsertCity(ctx, cityID, cityRequest("40", 10), "admin-1")
	require.NoError(t, err)
	_, err = svc.SetRepresentative(ctx, cityID, representativeRequest("1"), "admin-1")
	require.NoError(t, err)

	city, err := svc.RemoveRepresentative(ctx, cityID, "admin-1")
	require.NoError(t, err)
	assert.Nil(t, city.Representative)

	snapshot, err := store.Current(ctx)
	require.NoError(t, err)
	terms := snapshot.RevenueTermsFor(cityID)
	assert.Nil(t, terms.RepresentativeID)
	assert.True(t, terms.RepresentativePercentage.IsZero())
	publisher.AssertNumberOfCalls(t, "Publish", 3)
}

func TestService_PublishFailureKeepsWrite(t *testing.T) {
	svc, store, publisher := newTestService(t)
	ctx := context.Background()
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats: connection closed"))

	_, err := svc.UpsertCity(ctx, uuid.New(), cityRequest("40", 10), "admin-1")
	require.NoError(t, err)

	snapshot, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot.Cities, 1)
}

// ============================================================================
// Reads
// ============================================================================

func TestService_ListCities_SortedByName(t *testing.T) {
	svc, _, publisher := newTestService(t)
	ctx := context.Background()
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	for _, name := range []string{"Salvador", "Belo Horizonte", "Curitiba"} {
		_, err := svc.UpsertCity(ctx, uuid.New(), &CityRequest{Name: name, Timezone: "America/Sao_Paulo"}, "admin-1")
		require.NoError(t, err)
	}

	list, err := svc.ListCities(ctx)
	require.NoError(t, err)
	require.Len(t, list.Cities, 3)
	assert.Equal(t, "Belo Horizonte", list.Cities[0].Name)
	assert.Equal(t, "Salvador", list.Cities[2].Name)
}

func TestService_GetCity_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetCity(context.Background(), uuid.New())
	assert.Equal(t, http.StatusNotFound, appErrorCode(t, err))
}
