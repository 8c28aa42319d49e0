package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits kept for monetary values.
const AmountScale = 2

var oneHundred = decimal.NewFromInt(100)

// ParseAmount parses a decimal amount, rejecting values with more precision
// than AmountScale.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return decimal.Zero, NewError(KindValidation, "amount is required")
	}
	ret, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, WrapError(KindValidation, err, "invalid amount %q", text)
	}
	if !WithinScale(ret) {
		return decimal.Zero, NewError(KindValidation, "amount %q exceeds %d fractional digits", text, AmountScale)
	}
	return ret, nil
}

// WithinScale reports whether value has no significant digits beyond
// AmountScale; 1.500 qualifies, 1.005 does not.
func WithinScale(value decimal.Decimal) bool {
	return value.Exponent() >= -AmountScale || value.Equal(value.Round(AmountScale))
}

// MustAmount parses text or panics; intended for tests and static fixtures.
func MustAmount(text string) decimal.Decimal {
	ret, err := ParseAmount(text)
	if err != nil {
		panic(fmt.Sprintf("invalid amount %q: %v", text, err))
	}
	return ret
}

// ExecutionRate returns executed/budget*100 rounded to AmountScale, or zero
// when budget is zero.
func ExecutionRate(executed, budget decimal.Decimal) decimal.Decimal {
	if budget.IsZero() {
		return decimal.Zero
	}
	return executed.Mul(oneHundred).DivRound(budget, AmountScale)
}

// NonNegative floors value at zero and reports whether the floor was applied.
func NonNegative(value decimal.Decimal) (decimal.Decimal, bool) {
	if value.IsNegative() {
		return decimal.Zero, true
	}
	return value, false
}
