package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by a currency amount.
const Scale = 2

// RateScale is the number of fractional digits stored for an annual rate.
const RateScale = 4

// Round rounds d to cents, ties away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// RoundTo rounds d to places fractional digits, ties away from zero.
func RoundTo(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// Format renders an amount with exactly two fractional digits, e.g. "8606.64".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// FormatRate renders an annual rate with exactly four fractional digits, e.g. "0.0650".
func FormatRate(d decimal.Decimal) string {
	return d.StringFixed(RateScale)
}

// Parse reads a currency amount. The value must not carry more than two
// fractional digits.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !FitsScale(d, Scale) {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: more than %d fractional digits", s, Scale)
	}
	return d, nil
}

// FitsScale reports whether d can be stored with at most places fractional
// digits without losing precision.
func FitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// Sum adds the given amounts. An empty input sums to zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
