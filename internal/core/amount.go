// Package core holds the ledger domain model and the consistency rules
// every write path must satisfy.
//
// This file contains parsing and handling of monetary amounts. Amounts are
// fixed-point decimals with two fraction digits and at most twelve
// significant digits; storage keeps them as integer cents so database sums
// stay exact.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// maxAmount is the first value that no longer fits 12 significant digits
// with two of them fractional.
var maxAmount = decimal.New(1, 10)

// Amount is a monetary value. The zero value is zero money, which is
// never valid on a persisted record.
type Amount struct {
	decimal.Decimal
}

// AmountFromCents builds an Amount from an integer number of cents.
func AmountFromCents(cents int64) Amount {
	return Amount{Decimal: decimal.New(cents, -2)}
}

// ParseAmount parses a user-supplied amount string. It tolerates regular
// and non-breaking spaces anywhere in the value and both ',' and '.' as
// the decimal separator, so "1 000,50" parses to 1000.50.
//
// The parsed value must be strictly positive, carry at most two fraction
// digits and fit twelve significant digits; anything else fails with
// ErrInvalidAmount.
func ParseAmount(s string) (Amount, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return Amount{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}

	a := Amount{Decimal: d}
	if err := a.Validate(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// Validate checks positivity, scale and magnitude.
func (a Amount) Validate() error {
	if !a.IsPositive() {
		return ErrInvalidAmount
	}
	// Two fraction digits at most: shifting by two must leave an integer.
	if !a.Shift(2).IsInteger() {
		return ErrInvalidAmount
	}
	if a.Cmp(maxAmount) >= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Cents returns the amount as an integer number of cents.
func (a Amount) Cents() int64 {
	return a.Shift(2).IntPart()
}

// String renders the amount with exactly two fraction digits.
func (a Amount) String() string {
	return a.StringFixed(2)
}

// MarshalJSON encodes the amount as a fixed two-decimal string, matching
// what the write entry points accept.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON number or a formatted string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Add(b.Decimal)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Sub(b.Decimal)}
}
