package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountTooSmall       = errors.New("payment amount must be at least 1")
	ErrAmountExceedsBalance = errors.New("payment amount exceeds the outstanding balance")
)

// MinPayment is the smallest amount the ledger accepts.
var MinPayment = decimal.NewFromInt(1)

// Payment is an immutable record of money received from a client.
type Payment struct {
	ID       string          `json:"id"`
	ClientID string          `json:"client_id"`
	Amount   decimal.Decimal `json:"amount"`
	PaidAt   time.Time       `json:"paid_at"`
}

// ValidatePaymentAmount checks the amount's scale, then the minimum, then the
// balance. Amounts may carry up to StoragePlaces decimals so a balance such
// as 349.9965 can be paid exactly.
func ValidatePaymentAmount(amount, balance decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(StoragePlaces)) {
		return ErrInvalidAmount
	}
	if amount.LessThan(MinPayment) {
		return ErrAmountTooSmall
	}
	if amount.GreaterThan(balance) {
		return ErrAmountExceedsBalance
	}
	return nil
}
