// Package money holds the fixed-point helpers shared by fare and split calculations.
package money

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for currency amounts.
const Scale int32 = 2

// DefaultCurrency is used when neither config nor request name one.
const DefaultCurrency = "BRL"

var (
	hundred = decimal.NewFromInt(100)
	// Zero is the zero amount.
	Zero = decimal.Zero
	// One is the identity multiplier.
	One = decimal.NewFromInt(1)
)

func init() {
	// amounts travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Round rounds half away from zero to currency precision. For the
// non-negative amounts the engine produces this is round half up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Percent returns pct percent of amount without rounding.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MustParse parses s or panics; intended for constants and tests.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Hundred returns 100 as a decimal.
func Hundred() decimal.Decimal {
	return hundred
}
