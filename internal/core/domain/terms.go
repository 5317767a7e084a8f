package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTerm   = errors.New("invalid loan term")
	ErrInvalidDueDay = errors.New("invalid payment due day")
)

// interestRates maps the repayment term in months to the flat interest
// charged on the principal. The table is fixed.
var interestRates = map[int]decimal.Decimal{
	3:  decimal.RequireFromString("0.05"),
	6:  decimal.RequireFromString("0.10"),
	9:  decimal.RequireFromString("0.20"),
	12: decimal.RequireFromString("0.25"),
}

// TermOption is one selectable repayment plan.
type TermOption struct {
	Months int
	Rate   decimal.Decimal
}

// TermOptions lists the available plans ordered by length.
func TermOptions() []TermOption {
	out := make([]TermOption, 0, len(interestRates))
	for months, rate := range interestRates {
		out = append(out, TermOption{Months: months, Rate: rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Months < out[j].Months })
	return out
}

// InterestRate returns the rate for a term, or ErrInvalidTerm.
func InterestRate(months int) (decimal.Decimal, error) {
	rate, ok := interestRates[months]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %d months", ErrInvalidTerm, months)
	}
	return rate, nil
}

// BalanceWithInterest computes principal * (1 + rate(months)) without rounding.
func BalanceWithInterest(principal decimal.Decimal, months int) (decimal.Decimal, error) {
	rate, err := InterestRate(months)
	if err != nil {
		return decimal.Zero, err
	}
	return principal.Mul(decimal.NewFromInt(1).Add(rate)), nil
}

// ValidateDueDay checks that day is a day of the month.
func ValidateDueDay(day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("%w: %d", ErrInvalidDueDay, day)
	}
	return nil
}
