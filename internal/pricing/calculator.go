package pricing

import (
	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/shopspring/decimal"
)

// CalculateFare computes the trip fare from resolved pricing:
//
//	exceedKm = max(distanceKm - minimumKm, 0)
//	fare     = basePrice + minimumFee + exceedKm*pricePerKm + durationMinutes*pricePerMinute
//
// The fare is rounded once, after every component is summed. A trip within
// minimumKm is charged basePrice + minimumFee with no distance credit.
func CalculateFare(p Pricing, distanceKm, durationMinutes decimal.Decimal) (*FareBreakdown, error) {
	if distanceKm.IsNegative() {
		return nil, ErrInvalidDistance
	}
	if durationMinutes.IsNegative() {
		return nil, ErrInvalidDuration
	}

	exceedKm := money.Max(distanceKm.Sub(p.MinimumKm), decimal.Zero)
	distanceComponent := exceedKm.Mul(p.PricePerKm)
	timeComponent := durationMinutes.Mul(p.PricePerMinute)

	fare := p.BasePrice.
		Add(p.MinimumFee).
		Add(distanceComponent).
		Add(timeComponent)

	return &FareBreakdown{
		DistanceComponent: money.Round(distanceComponent),
		TimeComponent:     money.Round(timeComponent),
		BasePrice:         money.Round(p.BasePrice),
		MinimumFee:        money.Round(p.MinimumFee),
		ExceedKm:          exceedKm,
		Subtotal:          money.Round(fare),
	}, nil
}
