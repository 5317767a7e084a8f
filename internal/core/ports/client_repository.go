package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// ClientRepository defines persistence for borrower records. Every method is
// scoped to the owning account.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	// FindByID returns domain.ErrClientNotFound when the client does not exist
	// or belongs to another account.
	FindByID(ctx context.Context, ownerID, clientID string) (*domain.Client, error)
	// ListWithDebt returns the owner's clients with a positive balance and the
	// count of all the owner's clients.
	ListWithDebt(ctx context.Context, ownerID string) ([]domain.Client, int, error)
	// ApplyTerms replaces the balance with the post-interest amount. The
	// update only happens if terms were never applied and the stored balance
	// still equals principal; otherwise it returns domain.ErrTermsAlreadyApplied
	// or domain.ErrPrincipalMismatch.
	ApplyTerms(ctx context.Context, ownerID, clientID string, principal, balance decimal.Decimal, termMonths, dueDay int) error
}
