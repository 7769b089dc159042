// Package money holds the fixed-point currency rules shared by the services:
// two fractional digits, round half away from zero, never float.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for every stored amount.
const Places = 2

var (
	// InitialBalance is granted to every account on registration.
	InitialBalance = decimal.New(100, 0)

	// MaxTopUp is the largest single top-up accepted.
	MaxTopUp = decimal.New(1_000_000, 0)

	// MaxBalance is the largest balance NUMERIC(14,2) can hold.
	MaxBalance = decimal.RequireFromString("999999999999.99")
)

// Round rounds d to Places digits, halves away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format renders d with exactly Places fractional digits ("70.00").
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Parse reads a decimal string such as "12.5" or "+3". Scientific notation
// is rejected to keep request payloads unambiguous.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount required")
	}

	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	return d, nil
}
