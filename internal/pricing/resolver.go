package pricing

import (
	"bytes"

	"github.com/google/uuid"
)

// ResolveRule selects the pricing for a trip, most specific first:
//  1. active rule for (city, vehicle, purpose)
//  2. active base rule for (city, vehicle)
//  3. enabled vehicle default for the category
//
// Several candidates at one step are ordered by priority, then by the most
// recent update, then by the lowest id. ErrNoApplicablePricing is returned
// when every step comes up empty.
func ResolveRule(cityID uuid.UUID, vehicle VehicleCategory, purposeID *uuid.UUID, rules []PricingRule, vehicles []VehiclePricing) (*ResolvedPricing, error) {
	if purposeID != nil && *purposeID != uuid.Nil {
		if rule := bestRule(rules, cityID, vehicle, purposeID); rule != nil {
			return fromRule(rule, SourcePurposeRule), nil
		}
	}

	if rule := bestRule(rules, cityID, vehicle, nil); rule != nil {
		return fromRule(rule, SourceBaseRule), nil
	}

	for i := range vehicles {
		if vehicles[i].VehicleCategory == vehicle && vehicles[i].Enabled {
			return &ResolvedPricing{
				Pricing: vehicles[i].Pricing,
				Source:  SourceVehicleDefault,
			}, nil
		}
	}

	return nil, ErrNoApplicablePricing
}

func bestRule(rules []PricingRule, cityID uuid.UUID, vehicle VehicleCategory, purposeID *uuid.UUID) *PricingRule {
	var best *PricingRule
	for i := range rules {
		rule := &rules[i]
		if !rule.Active || !rule.Scope.Matches(cityID, vehicle, purposeID) {
			continue
		}
		if best == nil || outranks(rule, best) {
			best = rule
		}
	}
	return best
}

// outranks reports whether a wins the tie-break against b.
func outranks(a, b *PricingRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func fromRule(rule *PricingRule, source Source) *ResolvedPricing {
	id := rule.ID
	return &ResolvedPricing{
		Pricing: rule.Pricing,
		Source:  source,
		RuleID:  &id,
	}
}
