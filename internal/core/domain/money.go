package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MoneyPlaces is the number of fractional digits accepted for a principal
	// and the minimum shown when an amount is displayed.
	MoneyPlaces = 2
	// StoragePlaces is the scale of the money columns. Interest can produce
	// balances with up to this many digits, so payments accept them too.
	StoragePlaces = 4
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a user supplied amount with at most MoneyPlaces
// fractional digits. Sign checks are left to the caller because principal and
// payments have different lower bounds.
func ParseAmount(raw string) (decimal.Decimal, error) {
	return ParseAmountPlaces(raw, MoneyPlaces)
}

// ParseAmountPlaces is ParseAmount with an explicit limit on fractional digits.
func ParseAmountPlaces(raw string, places int32) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if !d.Equal(d.Truncate(places)) {
		return decimal.Zero, fmt.Errorf("%w: more than %d decimals", ErrInvalidAmount, places)
	}
	return d, nil
}

// FormatMoney renders an amount exactly, with at least two decimals:
// "1100.00", "349.9965", "0.0065". Digits past StoragePlaces are cut.
func FormatMoney(d decimal.Decimal) string {
	s := d.Truncate(StoragePlaces).StringFixed(StoragePlaces)
	dot := strings.IndexByte(s, '.')
	end := len(s)
	for end > dot+1+MoneyPlaces && s[end-1] == '0' {
		end--
	}
	return s[:end]
}
