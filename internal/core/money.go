// Package core provides the SplitInvoice domain model and money handling.
//
// This file contains functions for parsing monetary amounts and tax rates
// from strings and converting between cents and display representations.
// All bill arithmetic happens in integer cents; floating point only ever
// appears at the display and JSON boundaries.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero is a valid amount (a line
// item may legitimately cost nothing). Returns an error for invalid formats or
// negative values.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1234, nil (rounds down)
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only unsigned values allowed
		return 0, ErrInvalidAmount
	}
	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	// Convert integer part - check for overflow
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracCents++
				}
			}
		}
	}
	return iv*100 + fracCents, nil
}

// ParseAmount is the lenient variant used for user-entered prices: any
// invalid, non-numeric, or negative input counts as zero, matching how the
// calculator treats unparseable price fields.
func ParseAmount(s string) Money {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}
	}
	return Money{Cents: cents}
}

// CentsFromFloat converts a float (as delivered by the recognition service
// JSON) to cents using decimal arithmetic. Negative, NaN, and absurdly large
// values map to zero.
func CentsFromFloat(f float64) int64 {
	if f <= 0 || f != f || f > float64(1<<62)/100 {
		return 0
	}
	return decimal.NewFromFloat(f).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Float64 returns the amount in currency units for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals, e.g. "12.50".
func (m Money) String() string {
	return formatCents(m.Cents)
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// IsZero reports whether the amount is exactly zero cents.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// MarshalJSON encodes the amount as a plain JSON number with two decimals,
// preserving the snapshot schema of the original bill format.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(formatCents(m.Cents)), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		m.Cents = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	m.Cents = d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return nil
}

// Rate is a tax percentage held in basis points (10% == 1000 bp) so that
// fractional percentages stay exact.
type Rate struct {
	BasisPoints int64
}

// ParsePercent parses a percentage string ("10", "7.5") into a Rate.
// Invalid or negative input yields a zero rate.
func ParsePercent(s string) Rate {
	bp, err := ParseDecimalToCents(s)
	if err != nil {
		return Rate{}
	}
	return Rate{BasisPoints: bp}
}

// RateFromFloat converts a percent number (10 means 10%) to a Rate.
func RateFromFloat(f float64) Rate {
	return Rate{BasisPoints: CentsFromFloat(f)}
}

// Apply computes amount * rate with half-up rounding to whole cents.
func (r Rate) Apply(m Money) Money {
	if r.BasisPoints == 0 || m.Cents == 0 {
		return Money{}
	}
	n := m.Cents * r.BasisPoints
	q := n / 10000
	if n%10000 >= 5000 {
		q++
	}
	return Money{Cents: q}
}

// IsZero reports whether the rate is zero.
func (r Rate) IsZero() bool {
	return r.BasisPoints == 0
}

// Float64 returns the percentage for display (1000 bp -> 10.0).
func (r Rate) Float64() float64 {
	return float64(r.BasisPoints) / 100.0
}

// MarshalJSON encodes the rate as a percent number (1000 bp -> 10.00).
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(formatCents(r.BasisPoints)), nil
}

// UnmarshalJSON accepts percent numbers or quoted decimal strings.
func (r *Rate) UnmarshalJSON(data []byte) error {
	var m Money
	if err := m.UnmarshalJSON(data); err != nil {
		return err
	}
	r.BasisPoints = m.Cents
	return nil
}

func formatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
