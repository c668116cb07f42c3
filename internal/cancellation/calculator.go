package cancellation

import (
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/shopspring/decimal"
)

// CalculateFee applies the party's cancellation policy:
//
//	fee = 0                                          when disabled or elapsed <= time limit
//	fee = min(max(fare * feePercentage/100, minimumFee), fare) otherwise
//
// When fees has no entry for party the decision is a zero fee together with
// ErrPartyNotConfigured. Callers log that error and keep the decision.
func CalculateFee(fees []pricing.CancellationFee, party pricing.Party, elapsedMinutes, estimatedFare decimal.Decimal) (*FeeDecision, error) {
	if elapsedMinutes.IsNegative() {
		return nil, ErrInvalidElapsed
	}
	if estimatedFare.IsNegative() {
		return nil, ErrInvalidEstimatedFare
	}

	policy, ok := findFee(fees, party)
	if !ok {
		return waived(party, WaiverPartyNotConfigured, pricing.CancellationFee{}), ErrPartyNotConfigured
	}
	if !policy.Enabled {
		return waived(party, WaiverDisabled, policy), nil
	}
	if elapsedMinutes.LessThanOrEqual(policy.TimeLimitMinutes) {
		return waived(party, WaiverWithinTimeLimit, policy), nil
	}

	fee := money.Max(money.Percent(estimatedFare, policy.FeePercentage), policy.MinimumFee)
	capped := fee.GreaterThan(estimatedFare)
	fee = money.Min(fee, estimatedFare)

	return &FeeDecision{
		Party:            party,
		Fee:              money.Round(fee),
		Waived:           false,
		Capped:           capped,
		TimeLimitMinutes: policy.TimeLimitMinutes,
		FeePercentage:    policy.FeePercentage,
		MinimumFee:       policy.MinimumFee,
	}, nil
}

func findFee(fees []pricing.CancellationFee, party pricing.Party) (pricing.CancellationFee, bool) {
	for _, fee := range fees {
		if fee.Party == party {
			return fee, true
		}
	}
	return pricing.CancellationFee{}, false
}

func waived(party pricing.Party, reason WaiverReason, policy pricing.CancellationFee) *FeeDecision {
	return &FeeDecision{
		Party:            party,
		Fee:              decimal.Zero,
		Waived:           true,
		WaiverReason:     &reason,
		TimeLimitMinutes: policy.TimeLimitMinutes,
		FeePercentage:    policy.FeePercentage,
		MinimumFee:       policy.MinimumFee,
	}
}
