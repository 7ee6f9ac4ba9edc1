package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParsePrice converts a float64 per-share price from a JSON request into an
// exact decimal. Prices are quoted in dollars and cents, so more than 2
// decimal places is rejected rather than silently rounded. All arithmetic
// after this point is exact; rounding happens only when a query result is
// presented.
func ParsePrice(f float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(f)
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("price_per_share must be greater than 0")
	}
	if d.Exponent() < -2 {
		return decimal.Decimal{}, fmt.Errorf("price_per_share must have at most 2 decimal places")
	}
	return d, nil
}

// ParseRatio converts a float64 split ratio from a JSON request into an
// exact decimal. Ratios above 1 are forward splits, below 1 reverse splits.
func ParseRatio(f float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(f)
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("split_ratio must be greater than 0")
	}
	if d.Exponent() < -6 {
		return decimal.Decimal{}, fmt.Errorf("split_ratio must have at most 6 decimal places")
	}
	return d, nil
}
