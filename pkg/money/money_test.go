package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"22.004", "22"},
		{"22.005", "22.01"},
		{"0.125", "0.13"},
		{"7.499999", "7.5"},
		{"100", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, MustParse(tt.want).Equal(Round(MustParse(tt.in))), "got %s", Round(MustParse(tt.in)))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.True(t, MustParse("15").Equal(Percent(MustParse("100"), MustParse("15"))))
	assert.True(t, MustParse("6").Equal(Percent(MustParse("30"), MustParse("20"))))
}

func TestMaxMin(t *testing.T) {
	a, b := MustParse("6.00"), MustParse("5.00")
	assert.True(t, a.Equal(Max(a, b)))
	assert.True(t, b.Equal(Min(a, b)))
}

func TestJSONNumbers(t *testing.T) {
	out, err := json.Marshal(struct {
		Total decimal.Decimal `json:"total"`
	}{Total: MustParse("26.00")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":26}`, string(out))
}
