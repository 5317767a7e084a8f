package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// RecordPaymentInput is a payment submitted from the dashboard.
type RecordPaymentInput struct {
	OwnerID  string
	ClientID string
	Amount   decimal.Decimal
}

// PaymentResult is returned after a payment is committed.
type PaymentResult struct {
	Payment domain.Payment
	Balance decimal.Decimal
}

// PaymentService is the payment ledger.
type PaymentService interface {
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*PaymentResult, error)
	ListPayments(ctx context.Context, ownerID, clientID string) ([]domain.Payment, error)
}
