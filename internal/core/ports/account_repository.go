package ports

import (
	"context"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// AccountRepository defines persistence for accounts.
type AccountRepository interface {
	// Create inserts a new account. Returns domain.ErrAccountExists when the
	// identifier is taken; the existing row is left untouched.
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}
