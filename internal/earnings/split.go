package earnings

import (
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/shopspring/decimal"
)

// Split divides a completed fare between driver, representative and platform:
//
//	platformFeeAmount   = round(fare * platformFeePercentage/100)
//	driverEarning       = fare - platformFeeAmount
//	representativeShare = round(platformFeeAmount * representativePercentage/100)
//	platformNet         = platformFeeAmount - representativeShare
//
// Only the two percentage products are rounded, so the three parts always
// add back up to fare. Without a representative the platform keeps the
// whole fee.
func Split(fare decimal.Decimal, terms pricing.RevenueTerms) (*Breakdown, error) {
	if fare.IsNegative() {
		return nil, ErrInvalidFare
	}

	fee := money.Round(money.Percent(fare, terms.PlatformFeePercentage))
	out := &Breakdown{
		Fare:                     fare,
		PlatformFeePercentage:    terms.PlatformFeePercentage,
		PlatformFeeAmount:        fee,
		DriverEarning:            fare.Sub(fee),
		RepresentativePercentage: decimal.Zero,
		RepresentativeShare:      decimal.Zero,
		PlatformNet:              fee,
	}

	if terms.RepresentativeID != nil {
		id := *terms.RepresentativeID
		share := money.Round(money.Percent(fee, terms.RepresentativePercentage))
		out.RepresentativeID = &id
		out.RepresentativePercentage = terms.RepresentativePercentage
		out.RepresentativeShare = share
		out.PlatformNet = fee.Sub(share)
	}
	return out, nil
}
