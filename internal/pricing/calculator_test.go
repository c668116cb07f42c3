package pricing

import (
	"testing"

	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return money.MustParse(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func carRule() Pricing {
	return Pricing{
		PricePerKm: d("2.00"),
		MinimumKm:  d("3"),
		MinimumFee: d("8.00"),
	}
}

func TestCalculateFare(t *testing.T) {
	tests := []struct {
		name         string
		pricing      Pricing
		distance     string
		duration     string
		wantSubtotal string
		wantDistance string
		wantTime     string
	}{
		{
			name:         "distance above minimum charges the excess",
			pricing:      carRule(),
			distance:     "10",
			duration:     "0",
			wantSubtotal: "22.00",
			wantDistance: "14.00",
			wantTime:     "0",
		},
		{
			name:         "distance below minimum is the flat minimum",
			pricing:      carRule(),
			distance:     "2",
			duration:     "0",
			wantSubtotal: "8.00",
			wantDistance: "0",
			wantTime:     "0",
		},
		{
			name:         "distance exactly at minimum is the flat minimum",
			pricing:      carRule(),
			distance:     "3",
			duration:     "0",
			wantSubtotal: "8.00",
			wantDistance: "0",
			wantTime:     "0",
		},
		{
			name: "base price and time component are added",
			pricing: Pricing{
				PricePerKm:     d("1.50"),
				MinimumFee:     d("4.00"),
				BasePrice:      d("2.50"),
				PricePerMinute: d("0.30"),
			},
			distance:     "4",
			duration:     "15",
			wantSubtotal: "17.00",
			wantDistance: "6.00",
			wantTime:     "4.50",
		},
		{
			name:         "zero distance",
			pricing:      Pricing{PricePerKm: d("2.00")},
			distance:     "0",
			duration:     "0",
			wantSubtotal: "0",
			wantDistance: "0",
			wantTime:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fare, err := CalculateFare(tt.pricing, d(tt.distance), d(tt.duration))
			require.NoError(t, err)
			assertMoney(t, tt.wantSubtotal, fare.Subtotal)
			assertMoney(t, tt.wantDistance, fare.DistanceComponent)
			assertMoney(t, tt.wantTime, fare.TimeComponent)
		})
	}
}

func TestCalculateFare_RoundsOnceAtTheEnd(t *testing.T) {
	// 0.333 + 0.333 + 0.333 rounded per component would give 0.99
	p := Pricing{
		PricePerKm:     d("0.333"),
		PricePerMinute: d("0.333"),
		BasePrice:      d("0.334"),
	}

	fare, err := CalculateFare(p, d("1"), d("1"))
	require.NoError(t, err)
	assertMoney(t, "1.00", fare.Subtotal)
	assertMoney(t, "0.33", fare.DistanceComponent)
	assertMoney(t, "0.33", fare.TimeComponent)
}

func TestCalculateFare_RoundHalfUp(t *testing.T) {
	fare, err := CalculateFare(Pricing{PricePerKm: d("1.001")}, d("5"), decimal.Zero)
	require.NoError(t, err)
	assertMoney(t, "5.01", fare.Subtotal)
}

func TestCalculateFare_Errors(t *testing.T) {
	_, err := CalculateFare(carRule(), d("-0.1"), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidDistance)

	_, err = CalculateFare(carRule(), d("1"), d("-1"))
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestCalculateFare_FlatWithinMinimum(t *testing.T) {
	p := Pricing{
		PricePerKm: d("3.10"),
		MinimumKm:  d("5.5"),
		MinimumFee: d("9.90"),
		BasePrice:  d("1.25"),
	}
	flat := p.BasePrice.Add(p.MinimumFee)

	for _, distance := range []string{"0", "0.5", "2", "5", "5.5"} {
		fare, err := CalculateFare(p, d(distance), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, flat.Equal(fare.Subtotal), "distance %s: got %s", distance, fare.Subtotal)
	}
}

func TestCalculateFare_MonotonicInDistance(t *testing.T) {
	p := Pricing{
		PricePerKm: d("1.37"),
		MinimumKm:  d("2"),
		MinimumFee: d("6.00"),
	}

	previous := decimal.Zero
	for km := 0; km <= 400; km++ {
		distance := decimal.NewFromInt(int64(km)).Div(decimal.NewFromInt(4))
		fare, err := CalculateFare(p, distance, decimal.Zero)
		require.NoError(t, err)
		assert.False(t, fare.Subtotal.LessThan(previous), "fare decreased at %s km", distance)
		previous = fare.Subtotal
	}
}
