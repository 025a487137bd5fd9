// Package core provides money parsing and handling utilities.
//
// Amounts are carried as decimal values end to end and only converted to
// float64 when rendered for clients.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyMerchant   = errors.New("empty merchant")
	ErrMerchantTooLong = errors.New("merchant too long (max 200 characters)")
	ErrEmptyCategory   = errors.New("empty category")
)

// maxAmountExponent bounds the decimal exponent of a parsed amount. Larger
// exponents make later rescaling allocate without limit.
const maxAmountExponent = 18

// ParseAmount parses a single numeric token into a non-negative amount.
//
// The token must be a plain decimal number. Thousands separators, currency
// symbols and negative values are rejected.
//
// Examples:
//
//	ParseAmount("85.75")    -> 85.75, nil
//	ParseAmount("1,200.00") -> 0, ErrInvalidAmount
//	ParseAmount("-3")       -> 0, ErrInvalidAmount
//	ParseAmount("1e400")    -> 0, ErrInvalidAmount
func ParseAmount(token string) (decimal.Decimal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseTotalBody parses a TOTAL_MODULE body such as "USD 85.75". Only the
// last whitespace-delimited token is considered, so a leading currency
// label is tolerated.
func ParseTotalBody(body string) (decimal.Decimal, error) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return ParseAmount(fields[len(fields)-1])
}

// Round2 rounds an amount half away from zero to two decimals.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Float returns the amount rounded to two decimals as a float64 for display.
// Use decimals for calculations.
func Float(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
