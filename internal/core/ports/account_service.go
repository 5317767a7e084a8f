package ports

import (
	"context"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// AccountService is the account directory: registration and login.
type AccountService interface {
	Register(ctx context.Context, identifier, credential string) (*domain.Account, error)
	Authenticate(ctx context.Context, identifier, credential string) (*domain.Session, error)
	// ResolveSession returns the account behind a session token.
	ResolveSession(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}
