// Package money holds the decimal helpers shared by the stores and the reports.
package money

import "github.com/shopspring/decimal"

func init() {
	// amounts travel as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Sum adds amounts without float drift.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// ClampNonNegative returns max(0, d).
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// IsPositive reports whether d > 0.
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}
