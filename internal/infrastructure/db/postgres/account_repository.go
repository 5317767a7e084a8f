package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts the account and relies on the primary key to reject
// duplicates, so concurrent registrations of one identifier cannot both win.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO usuarios (id, "contraseña", creado_en) VALUES ($1, $2, $3)`,
		account.ID, account.PasswordHash, toMillis(account.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		a       domain.Account
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, "contraseña", creado_en FROM usuarios WHERE id = $1`, id,
	).Scan(&a.ID, &a.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	a.CreatedAt = fromMillis(created)
	return &a, nil
}
