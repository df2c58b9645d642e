package domain

import "github.com/shopspring/decimal"

// Amounts are stored as NUMERIC(14,2).
const (
	maxIntegerDigits  = 12
	maxFractionDigits = 30
)

var MaxAmount = decimal.New(99999999999999, -2)

// NormalizeAmount checks that d is a storable, non-negative money value and
// rounds it to cents. The sign, digit count and exponent are checked before
// any rounding or comparison, both of which rescale the coefficient.
func NormalizeAmount(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Decimal{}, amountError("must not be negative")
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}

	exp := int(d.Exponent())
	if exp < -maxFractionDigits {
		return decimal.Decimal{}, amountError("has too many decimal places")
	}
	if d.NumDigits()+exp > maxIntegerDigits {
		return decimal.Decimal{}, amountError("must be at most 999999999999.99")
	}

	rounded := d.Round(2)
	if rounded.GreaterThan(MaxAmount) {
		return decimal.Decimal{}, amountError("must be at most 999999999999.99")
	}
	return rounded, nil
}
