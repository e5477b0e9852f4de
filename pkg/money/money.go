// Package money holds the fixed-point helpers every amount in the ledger goes
// through. Amounts carry two fractional digits.
package money

import "github.com/shopspring/decimal"

const Scale = 2

var hundred = decimal.NewFromInt(100)

// Round rounds d to the ledger scale, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal { return d.Round(Scale) }

// IsCents reports whether d needs no more than two fractional digits.
func IsCents(d decimal.Decimal) bool { return d.Equal(d.Round(Scale)) }

// IsPositive reports d > 0.
func IsPositive(d decimal.Decimal) bool { return d.GreaterThan(decimal.Zero) }

// WithInterest returns principal × (1 + ratePercent/100) at ledger scale.
func WithInterest(principal, ratePercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(ratePercent.Div(hundred))
	return Round(principal.Mul(factor))
}

// Format renders d with exactly two fractional digits.
func Format(d decimal.Decimal) string { return d.StringFixed(Scale) }
