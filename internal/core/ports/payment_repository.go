package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// PaymentRepository handles the ledger table and the balance it drives.
type PaymentRepository interface {
	// Apply atomically decrements the client's balance by payment.Amount and
	// inserts the payment, returning the new balance. Nothing is written when
	// the client is unknown (domain.ErrClientNotFound) or the amount exceeds
	// the balance at write time (domain.ErrAmountExceedsBalance).
	Apply(ctx context.Context, ownerID string, payment *domain.Payment) (decimal.Decimal, error)
	// ListByClient returns the client's payments, newest first.
	ListByClient(ctx context.Context, ownerID, clientID string) ([]domain.Payment, error)
}
