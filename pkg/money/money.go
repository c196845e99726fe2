// Package money parses and checks currency amounts. Amounts are decimals
// with at most two fractional digits; floats are never involved.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const Scale = 2

// maxInputLen keeps digit strings short enough that parsing stays cheap.
const maxInputLen = 32

var ErrInvalidAmount = errors.New("invalid amount")

// plainAmount is fixed-point notation only; exponents are rejected.
var plainAmount = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// MaxAmount is the largest value a NUMERIC(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

var (
	TopUpMin = decimal.RequireFromString("10.00")
	TopUpMax = decimal.RequireFromString("1000000.00")
)

// Bounds is an inclusive range of accepted amounts.
type Bounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

var WalletBounds = Bounds{Min: TopUpMin, Max: TopUpMax}

// Parse converts user input into an amount rounded to Scale.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	if len(s) > maxInputLen {
		return decimal.Zero, fmt.Errorf("%w: amount is too long", ErrInvalidAmount)
	}
	if !plainAmount.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Truncate(Scale)) {
		return decimal.Zero, fmt.Errorf("%w: at most %d decimal places are allowed", ErrInvalidAmount, Scale)
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: maximum amount is RM%s", ErrInvalidAmount, Format(MaxAmount))
	}
	return d.Truncate(Scale), nil
}

// ParsePositive is Parse plus a strictly positive check.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	return d, nil
}

// Check reports which bound d violates, if any.
func (b Bounds) Check(d decimal.Decimal) error {
	if d.LessThan(b.Min) {
		return fmt.Errorf("%w: minimum amount is RM%s", ErrInvalidAmount, Format(b.Min))
	}
	if d.GreaterThan(b.Max) {
		return fmt.Errorf("%w: maximum amount is RM%s", ErrInvalidAmount, Format(b.Max))
	}
	return nil
}

// ParseWithin parses s and checks it against b.
func ParseWithin(s string, b Bounds) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if err := b.Check(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

func FormatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return Format(d.Decimal)
}
