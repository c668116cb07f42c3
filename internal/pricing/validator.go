package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/richxcame/logistics-pricing/pkg/validation"
)

// Validator collects every violation found in a configuration payload.
// It never stops at the first failure; call Err once all sections ran.
type Validator struct {
	violations validation.Violations
}

// Err returns nil or an error wrapping ErrConfigValidationFailed and the
// full violation list.
func (v *Validator) Err() error {
	if len(v.violations) == 0 {
		return nil
	}
	return ValidationFailed(v.violations)
}

// Violations returns what has been collected so far.
func (v *Validator) Violations() validation.Violations {
	return v.violations
}

// VehiclePricing checks the fallback table holds exactly one entry per category.
func (v *Validator) VehiclePricing(items []VehiclePricing) {
	seen := make(map[VehicleCategory]bool, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("vehicle_pricing[%d]", i)
		v.violations.Collect(item, prefix)
		if seen[item.VehicleCategory] {
			v.violations.Addf(prefix+".vehicle_category", "unique", "duplicate entry for %s", item.VehicleCategory)
		}
		seen[item.VehicleCategory] = true
	}
	for _, category := range VehicleCategories {
		if !seen[category] {
			v.violations.Addf("vehicle_pricing", "required", "missing entry for %s", category)
		}
	}
}

// Rules checks every rule and that no two active rules share a scope.
func (v *Validator) Rules(rules []PricingRule) {
	active := make(map[string]int, len(rules))
	for i, rule := range rules {
		v.rule(fmt.Sprintf("rules[%d]", i), rule)
		if !rule.Active {
			continue
		}
		key := rule.Scope.Key()
		if first, ok := active[key]; ok {
			v.violations.Addf(fmt.Sprintf("rules[%d].scope", i), "unique",
				"an active rule already exists for this scope (rules[%d])", first)
			continue
		}
		active[key] = i
	}
}

func (v *Validator) rule(prefix string, rule PricingRule) {
	v.violations.Collect(rule, prefix)
	if rule.ID == uuid.Nil {
		v.violations.Add(prefix+".id", "required", "is required")
	}
	if rule.Scope.CityID == uuid.Nil {
		v.violations.Add(prefix+".scope.city_id", "required", "is required")
	}
}

// PeakHours checks ranges and that every window ends after it starts.
func (v *Validator) PeakHours(peaks []PeakHour) {
	for i, peak := range peaks {
		prefix := fmt.Sprintf("peak_hours[%d]", i)
		v.violations.Collect(peak, prefix)

		start, startOK := validation.ParseClock(peak.StartTime)
		end, endOK := validation.ParseClock(peak.EndTime)
		if startOK && endOK && end <= start {
			v.violations.Add(prefix+".end_time", "after_start",
				"must be after start_time; windows cannot wrap midnight or be empty")
		}
		if peak.CityID != nil && *peak.CityID == uuid.Nil {
			v.violations.Add(prefix+".city_id", "uuid", "must be a valid city id or omitted")
		}
	}
}

// CancellationFees checks ranges and that each party appears at most once.
func (v *Validator) CancellationFees(fees []CancellationFee) {
	seen := make(map[Party]bool, len(fees))
	for i, fee := range fees {
		prefix := fmt.Sprintf("cancellation_fees[%d]", i)
		v.violations.Collect(fee, prefix)
		if seen[fee.Party] {
			v.violations.Addf(prefix+".party", "unique", "duplicate entry for %s", fee.Party)
		}
		seen[fee.Party] = true
	}
}

// Platform checks the marketplace settings.
func (v *Validator) Platform(settings PlatformSettings) {
	v.violations.Collect(settings, "platform")
}

// Cities checks each city and that ids are unique.
func (v *Validator) Cities(cities []City) {
	seen := make(map[uuid.UUID]bool, len(cities))
	for i, city := range cities {
		prefix := fmt.Sprintf("cities[%d]", i)
		v.City(prefix, city)
		if seen[city.ID] {
			v.violations.Add(prefix+".id", "unique", "duplicate city")
		}
		seen[city.ID] = true
	}
}

// City checks one city, including that the platform share is exactly the
// complement of the representative share.
func (v *Validator) City(prefix string, city City) {
	v.violations.Collect(city, prefix)
	if city.ID == uuid.Nil {
		v.violations.Add(joinField(prefix, "id"), "required", "is required")
	}

	sharing := city.RevenueSharing
	if !sharing.RepresentativePercentage.Add(sharing.PlatformPercentage).Equal(money.Hundred()) {
		v.violations.Add(joinField(prefix, "revenue_sharing.platform_percentage"), "derived",
			"must equal 100 - representative_percentage")
	}
	if sharing.Configured && sharing.PaymentDay == 0 {
		v.violations.Add(joinField(prefix, "revenue_sharing.payment_day"), "required", "is required")
	}
	if city.Representative != nil && city.Representative.ID == uuid.Nil {
		v.violations.Add(joinField(prefix, "representative.id"), "required", "is required")
	}
}

// ValidateSnapshot validates every section of a full configuration.
func ValidateSnapshot(s *Snapshot) error {
	var v Validator
	v.VehiclePricing(s.VehiclePricing)
	v.Rules(s.Rules)
	v.PeakHours(s.PeakHours)
	v.CancellationFees(s.CancellationFees)
	v.Platform(s.Platform)
	v.Cities(s.Cities)
	return v.Err()
}

func joinField(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}
