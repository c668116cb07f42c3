package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type window struct {
	Name       string          `json:"name" validate:"required"`
	Start      string          `json:"start_time" validate:"hhmm"`
	Multiplier decimal.Decimal `json:"multiplier" validate:"dgte=1"`
	Weekdays   []int           `json:"days_of_week" validate:"min=1,dive,gte=0,lte=6"`
}

type fee struct {
	Percentage decimal.Decimal `json:"platform_fee_percentage" validate:"dgte=0,dlte=50,decimals=2"`
}

func TestValidateStruct_Decimals(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantRule string
	}{
		{"lower bound", "0", ""},
		{"upper bound", "50", ""},
		{"fraction", "12.5", ""},
		{"trailing zeros", "12.500", ""},
		{"above range", "60", "dlte"},
		{"negative", "-0.01", "dgte"},
		{"just above bound", "50.0000000000000001", "dlte"},
		{"just below bound", "-0.0000000000000001", "dgte"},
		{"three places", "12.345", "decimals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(fee{Percentage: decimal.RequireFromString(tt.value)}, "platform")
			if tt.wantRule == "" {
				assert.NoError(t, err)
				return
			}
			var violations Violations
			require.True(t, errors.As(err, &violations))
			assert.Equal(t, []string{"platform.platform_fee_percentage"}, violations.Fields())
			assert.Equal(t, tt.wantRule, violations[0].Rule)
		})
	}
}

func TestValidateStruct_DecimalMessages(t *testing.T) {
	err := ValidateStruct(fee{Percentage: decimal.RequireFromString("12.345")}, "")

	var violations Violations
	require.True(t, errors.As(err, &violations))
	require.Len(t, violations, 1)
	assert.Equal(t, "must have at most 2 decimal places", violations[0].Message)
}

func TestValidateStruct_AggregatesAllFields(t *testing.T) {
	err := ValidateStruct(window{
		Start:      "7:5",
		Multiplier: decimal.RequireFromString("0.9"),
		Weekdays:   []int{1, 9},
	}, "peak_hours[0]")

	var violations Violations
	require.True(t, errors.As(err, &violations))
	assert.ElementsMatch(t, []string{
		"peak_hours[0].name",
		"peak_hours[0].start_time",
		"peak_hours[0].multiplier",
		"peak_hours[0].days_of_week[1]",
	}, violations.Fields())
}

func TestCollect(t *testing.T) {
	var v Violations
	v.Collect(fee{Percentage: decimal.NewFromInt(10)}, "a")
	assert.NoError(t, v.Err())

	v.Collect(fee{Percentage: decimal.NewFromInt(70)}, "b")
	v.Addf("b.cities", "unique", "duplicate city %s", "x")
	require.Error(t, v.Err())
	assert.Len(t, v, 2)
	assert.Contains(t, v.Error(), "2 validation error(s)")
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"07:30", 450, true},
		{"23:59", 1439, true},
		{"24:00", 1440, true},
		{"24:01", 0, false},
		{"7:30", 0, false},
		{"ab:cd", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			minutes, ok := ParseClock(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.minutes, minutes)
		})
	}
}
