package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteSnapshot(cityID uuid.UUID) *Snapshot {
	s := DefaultSnapshot("BRL")
	s.Version = 4
	s.Rules = []PricingRule{rule(BaseScope(cityID, VehicleCar), "2.00")}
	s.Rules[0].Pricing = carRule()
	s.PeakHours = []PeakHour{
		{ID: uuid.New(), Name: "morning", DaysOfWeek: weekdays(), StartTime: "07:00", EndTime: "09:00", Multiplier: d("1.3"), Enabled: true},
	}
	return s
}

func TestQuoteTrip_OffPeak(t *testing.T) {
	cityID := uuid.New()
	s := quoteSnapshot(cityID)

	quote, err := QuoteTrip(s, QuoteRequest{
		CityID:          cityID,
		VehicleCategory: VehicleCar,
		DistanceKm:      d("10"),
		RequestedAt:     at(12, 0),
	})
	require.NoError(t, err)

	assertMoney(t, "22.00", quote.Subtotal)
	assertMoney(t, "1", quote.PeakMultiplier)
	assertMoney(t, "22.00", quote.Total)
	assertMoney(t, "3.30", quote.PlatformFee)
	assert.Equal(t, "BRL", quote.Currency)
	assert.Equal(t, SourceBaseRule, quote.PricingSource)
	assert.Equal(t, &s.Rules[0].ID, quote.RuleID)
	assert.Equal(t, int64(4), quote.SnapshotVersion)
}

func TestQuoteTrip_PeakSurcharge(t *testing.T) {
	cityID := uuid.New()
	s := quoteSnapshot(cityID)
	s.Rules[0].Pricing = Pricing{PricePerKm: d("2.00")}

	quote, err := QuoteTrip(s, QuoteRequest{
		CityID:          cityID,
		VehicleCategory: VehicleCar,
		DistanceKm:      d("10"),
		RequestedAt:     at(8, 15),
	})
	require.NoError(t, err)

	assertMoney(t, "20.00", quote.Subtotal)
	assertMoney(t, "1.3", quote.PeakMultiplier)
	assertMoney(t, "26.00", quote.Total)
	assertMoney(t, "3.90", quote.PlatformFee)
}

func TestQuoteTrip_UsesCityClock(t *testing.T) {
	cityID := uuid.New()
	s := quoteSnapshot(cityID)
	s.Cities = []City{{ID: cityID, Name: "Campinas", Timezone: "America/Sao_Paulo"}}

	// 11:00 UTC is 08:00 in Sao Paulo
	quote, err := QuoteTrip(s, QuoteRequest{
		CityID:          cityID,
		VehicleCategory: VehicleCar,
		DistanceKm:      d("10"),
		RequestedAt:     at(11, 0),
	})
	require.NoError(t, err)
	assertMoney(t, "1.3", quote.PeakMultiplier)

	// 08:00 UTC is 05:00 in Sao Paulo
	quote, err = QuoteTrip(s, QuoteRequest{
		CityID:          cityID,
		VehicleCategory: VehicleCar,
		DistanceKm:      d("10"),
		RequestedAt:     at(8, 0),
	})
	require.NoError(t, err)
	assertMoney(t, "1", quote.PeakMultiplier)
}

func TestQuoteTrip_FallsBackToVehicleDefault(t *testing.T) {
	s := quoteSnapshot(uuid.New())

	quote, err := QuoteTrip(s, QuoteRequest{
		CityID:          uuid.New(),
		VehicleCategory: VehicleVan,
		DistanceKm:      d("4"),
		RequestedAt:     at(12, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, SourceVehicleDefault, quote.PricingSource)
	assert.Nil(t, quote.RuleID)
	assertMoney(t, "14.00", quote.Total)
}

func TestQuoteTrip_Errors(t *testing.T) {
	cityID := uuid.New()
	s := quoteSnapshot(cityID)
	s.VehiclePricing = nil

	_, err := QuoteTrip(s, QuoteRequest{CityID: uuid.New(), VehicleCategory: VehicleTruck, DistanceKm: d("1")})
	assert.ErrorIs(t, err, ErrNoApplicablePricing)

	_, err = QuoteTrip(s, QuoteRequest{CityID: cityID, VehicleCategory: VehicleCar, DistanceKm: d("-1")})
	assert.ErrorIs(t, err, ErrInvalidDistance)
}

func TestQuoteTrip_Deterministic(t *testing.T) {
	cityID := uuid.New()
	s := quoteSnapshot(cityID)
	req := QuoteRequest{
		CityID:          cityID,
		VehicleCategory: VehicleCar,
		DistanceKm:      d("17.35"),
		DurationMinutes: d("23"),
		RequestedAt:     at(7, 45),
	}

	first, err := QuoteTrip(s, req)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := QuoteTrip(s, req)
		require.NoError(t, err)
		assert.True(t, first.Total.Equal(again.Total))
		assert.True(t, first.PlatformFee.Equal(again.PlatformFee))
	}
}

func TestSnapshot_RevenueTermsFor(t *testing.T) {
	withRep := uuid.New()
	unconfigured := uuid.New()
	noRep := uuid.New()
	repID := uuid.New()
	otherRepID := uuid.New()

	s := DefaultSnapshot("BRL")
	s.Platform.DefaultRepresentativePercentage = d("30")
	s.Cities = []City{
		{
			ID: withRep, Name: "Campinas", Timezone: "America/Sao_Paulo",
			RevenueSharing: RevenueSharing{RepresentativePercentage: d("50"), PlatformPercentage: d("50"), PaymentDay: 5, Configured: true},
			Representative: &Representative{ID: repID, Name: "Ana", Document: "123"},
		},
		{
			ID: unconfigured, Name: "Santos", Timezone: "America/Sao_Paulo",
			Representative: &Representative{ID: otherRepID, Name: "Bruno", Document: "456"},
		},
		{
			ID: noRep, Name: "Sorocaba", Timezone: "America/Sao_Paulo",
			RevenueSharing: RevenueSharing{RepresentativePercentage: d("40"), PlatformPercentage: d("60"), PaymentDay: 5, Configured: true},
		},
	}

	tests := []struct {
		name    string
		cityID  uuid.UUID
		wantRep *uuid.UUID
		wantPct string
	}{
		{"configured city with representative", withRep, &repID, "50"},
		{"unconfigured city uses platform default", unconfigured, &otherRepID, "30"},
		{"city without representative", noRep, nil, "0"},
		{"unknown city", uuid.New(), nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := s.RevenueTermsFor(tt.cityID)
			assertMoney(t, "15", terms.PlatformFeePercentage)
			assert.Equal(t, tt.wantRep, terms.RepresentativeID)
			assertMoney(t, tt.wantPct, terms.RepresentativePercentage)
		})
	}
}

func TestCity_LocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, City{Timezone: "Nowhere/Special"}.Location())
	assert.Equal(t, time.UTC, City{}.Location())
	assert.Equal(t, "America/Sao_Paulo", City{Timezone: "America/Sao_Paulo"}.Location().String())
}
