package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/shopspring/decimal"
)

// QuoteTrip runs resolution, fare calculation and the peak surcharge
// against one snapshot. Every input of the quote, including the platform
// fee and the city clock, comes from that same snapshot.
func QuoteTrip(snapshot *Snapshot, req QuoteRequest) (*Quote, error) {
	resolved, err := ResolveRule(req.CityID, req.VehicleCategory, req.PurposeID, snapshot.Rules, snapshot.VehiclePricing)
	if err != nil {
		return nil, err
	}

	breakdown, err := CalculateFare(resolved.Pricing, req.DistanceKm, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	location := time.UTC
	if city, ok := snapshot.City(req.CityID); ok {
		location = city.Location()
	}
	requestedAt := req.RequestedAt
	if requestedAt.IsZero() {
		requestedAt = time.Now()
	}

	multiplier := PeakMultiplier(snapshot.PeakHours, req.CityID, requestedAt.In(location))
	total := ApplyPeak(breakdown.Subtotal, multiplier)

	return &Quote{
		FareBreakdown:   *breakdown,
		PeakMultiplier:  multiplier,
		PlatformFee:     money.Round(money.Percent(total, snapshot.Platform.PlatformFeePercentage)),
		Total:           total,
		Currency:        snapshot.Platform.Currency,
		PricingSource:   resolved.Source,
		RuleID:          resolved.RuleID,
		SnapshotVersion: snapshot.Version,
	}, nil
}

// RevenueTerms are the split inputs a city has under one snapshot.
type RevenueTerms struct {
	PlatformFeePercentage    decimal.Decimal `json:"platform_fee_percentage"`
	RepresentativeID         *uuid.UUID      `json:"representative_id,omitempty"`
	RepresentativePercentage decimal.Decimal `json:"representative_percentage"`
}

// RevenueTermsFor returns the split inputs for cityID. Cities whose sharing
// was never configured use the platform default percentage; cities without
// a representative keep the whole platform fee.
func (s *Snapshot) RevenueTermsFor(cityID uuid.UUID) RevenueTerms {
	terms := RevenueTerms{
		PlatformFeePercentage:    s.Platform.PlatformFeePercentage,
		RepresentativePercentage: decimal.Zero,
	}

	city, ok := s.City(cityID)
	if !ok || city.Representative == nil {
		return terms
	}

	id := city.Representative.ID
	terms.RepresentativeID = &id
	if city.RevenueSharing.Configured {
		terms.RepresentativePercentage = city.RevenueSharing.RepresentativePercentage
	} else {
		terms.RepresentativePercentage = s.Platform.DefaultRepresentativePercentage
	}
	return terms
}
