package validation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ClockLayout is the wall clock format used by time-of-day windows.
const ClockLayout = "15:04"

// EndOfDay closes a window at midnight without wrapping.
const EndOfDay = "24:00"

// validateClock accepts zero padded 24h times such as 07:30, 18:00 or 24:00.
func validateClock(fl validator.FieldLevel) bool {
	_, ok := ParseClock(fl.Field().String())
	return ok
}

// ParseClock converts HH:MM into minutes after midnight.
func ParseClock(value string) (int, bool) {
	if len(value) != len(ClockLayout) {
		return 0, false
	}
	if value == EndOfDay {
		return 24 * 60, true
	}
	t, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// decimalBound builds a rule comparing a decimal.Decimal field with the tag
// parameter. Non-decimal fields fail.
func decimalBound(cmp func(value, bound decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			panic(fmt.Sprintf("bad decimal bound %q on %s", fl.Param(), fl.FieldName()))
		}
		return cmp(value, bound)
	}
}

// validateDecimalPlaces checks a decimal.Decimal carries no more than
// param fractional digits. Trailing zeros do not count.
func validateDecimalPlaces(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	places, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil {
		panic(fmt.Sprintf("bad decimals param %q on %s", fl.Param(), fl.FieldName()))
	}
	return value.Equal(value.Truncate(int32(places)))
}
