package pricing

import (
	"time"

	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/shopspring/decimal"
)

// Fallback configuration used until an administrator saves one.
var (
	defaultPricePerKm = map[VehicleCategory]decimal.Decimal{
		VehicleMotorcycle: money.MustParse("1.50"),
		VehicleCar:        money.MustParse("2.00"),
		VehicleVan:        money.MustParse("3.50"),
		VehicleTruck:      money.MustParse("5.00"),
	}

	defaultPlatformFeePercentage = decimal.NewFromInt(15)
)

// DefaultVehiclePricing returns the fallback table, one enabled entry per
// category with minimum_km 0.
func DefaultVehiclePricing() []VehiclePricing {
	out := make([]VehiclePricing, 0, len(VehicleCategories))
	for _, category := range VehicleCategories {
		out = append(out, VehiclePricing{
			VehicleCategory: category,
			Pricing: Pricing{
				PricePerKm: defaultPricePerKm[category],
			},
			Enabled: true,
		})
	}
	return out
}

// DefaultPlatformSettings returns the marketplace defaults.
func DefaultPlatformSettings(currency string) PlatformSettings {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return PlatformSettings{
		PlatformFeePercentage:           defaultPlatformFeePercentage,
		SearchRadiusKm:                  decimal.NewFromInt(10),
		DriverTimeoutSeconds:            30,
		MaxDriversToNotify:              5,
		AutoAcceptRadiusKm:              decimal.Zero,
		DefaultRepresentativePercentage: decimal.Zero,
		Currency:                        currency,
	}
}

// DefaultSnapshot is the version 0 configuration served when nothing is
// persisted. Cancellation fees start empty so parties are opted in explicitly.
func DefaultSnapshot(currency string) *Snapshot {
	return &Snapshot{
		Version:          0,
		UpdatedAt:        time.Time{},
		VehiclePricing:   DefaultVehiclePricing(),
		Rules:            []PricingRule{},
		PeakHours:        []PeakHour{},
		CancellationFees: []CancellationFee{},
		Platform:         DefaultPlatformSettings(currency),
		Cities:           []City{},
	}
}
