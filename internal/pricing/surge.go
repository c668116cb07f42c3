package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/richxcame/logistics-pricing/pkg/validation"
	"github.com/shopspring/decimal"
)

// PeakMultiplier returns the multiplier for a request made at local time in
// cityID. Overlapping windows do not compound: the largest matching
// multiplier wins. No match yields 1.
func PeakMultiplier(peaks []PeakHour, cityID uuid.UUID, local time.Time) decimal.Decimal {
	multiplier := money.One
	weekday := int(local.Weekday())
	minute := local.Hour()*60 + local.Minute()

	for i := range peaks {
		peak := &peaks[i]
		if !peak.appliesTo(cityID) || !peak.covers(weekday, minute) {
			continue
		}
		multiplier = money.Max(multiplier, peak.Multiplier)
	}
	return multiplier
}

// ApplyPeak multiplies fare and rounds to currency precision.
func ApplyPeak(fare, multiplier decimal.Decimal) decimal.Decimal {
	return money.Round(fare.Mul(multiplier))
}

func (p *PeakHour) appliesTo(cityID uuid.UUID) bool {
	return p.Enabled && (p.CityID == nil || *p.CityID == cityID)
}

// covers reports whether start <= minute < end on a listed weekday.
func (p *PeakHour) covers(weekday, minute int) bool {
	start, ok := validation.ParseClock(p.StartTime)
	if !ok {
		return false
	}
	end, ok := validation.ParseClock(p.EndTime)
	if !ok {
		return false
	}
	if minute < start || minute >= end {
		return false
	}
	for _, day := range p.DaysOfWeek {
		if day == weekday {
			return true
		}
	}
	return false
}
