package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Apply decrements the balance only if it still covers the amount and inserts
// the payment in the same transaction.
func (r *PaymentRepository) Apply(ctx context.Context, ownerID string, p *domain.Payment) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin payment: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		UPDATE clientes_oficial
		SET prestamo = prestamo - $1
		WHERE id = $2 AND usuario_id = $3 AND prestamo >= $4
		RETURNING prestamo`,
		p.Amount, p.ClientID, ownerID, p.Amount,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		exists, err := clientExists(ctx, tx, ownerID, p.ClientID)
		if err != nil {
			return decimal.Zero, err
		}
		if !exists {
			return decimal.Zero, domain.ErrClientNotFound
		}
		return decimal.Zero, domain.ErrAmountExceedsBalance
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("decrement balance: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pagos (id, id_cliente, monto_pagado, creado_en) VALUES ($1, $2, $3, $4)`,
		p.ID, p.ClientID, p.Amount, toMillis(p.PaidAt),
	); err != nil {
		return decimal.Zero, fmt.Errorf("insert payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("commit payment: %w", err)
	}
	return balance, nil
}

func (r *PaymentRepository) ListByClient(ctx context.Context, ownerID, clientID string) ([]domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.id_cliente, p.monto_pagado, p.creado_en
		FROM pagos p
		JOIN clientes_oficial c ON c.id = p.id_cliente
		WHERE p.id_cliente = $1 AND c.usuario_id = $2
		ORDER BY p.creado_en DESC, p.id DESC`, clientID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var (
			p       domain.Payment
			created int64
		)
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Amount, &created); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.PaidAt = fromMillis(created)
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
