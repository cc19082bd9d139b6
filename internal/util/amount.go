package util

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string in major units ("12.34") to cents.
// More than two fractional digits is rejected rather than rounded, as is
// anything whose magnitude reaches MaxAmount cents.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than two decimals", s)
	}
	if cents.Abs().GreaterThanOrEqual(decimal.NewFromInt(MaxAmount)) {
		return 0, fmt.Errorf("amount %q is too large", s)
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as a plain two-decimal string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// DisplayAmount renders cents in the given ISO currency, e.g. "$12.34".
// Unknown currency codes fall back to FormatCents followed by the code.
func DisplayAmount(cents int64, currency string) string {
	if currency == "" || money.GetCurrency(currency) == nil {
		if currency == "" {
			return FormatCents(cents)
		}
		return FormatCents(cents) + " " + currency
	}
	return money.New(cents, currency).Display()
}
