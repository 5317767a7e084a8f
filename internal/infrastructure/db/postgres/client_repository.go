package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

const clientColumns = `id, usuario_id, nombre, apellido, telefono, direccion, aval, telefono_aval,
	prestamo, dia_pago, plazo_meses, credencial_cliente, credencial_aval, comprobante_domicilio, creado_en`

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clientes_oficial (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.OwnerID, c.FirstName, c.LastName, c.Phone, c.Address, c.GuarantorName, c.GuarantorPhone,
		c.Balance, nullableInt(c.DueDay), nullableInt(c.TermMonths),
		c.Documents.ClientID, c.Documents.GuarantorID, c.Documents.ProofOfAddress,
		toMillis(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, ownerID, clientID string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clientes_oficial WHERE id = $1 AND usuario_id = $2`,
		clientID, ownerID,
	)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) ListWithDebt(ctx context.Context, ownerID string) ([]domain.Client, int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+clientColumns+` FROM clientes_oficial
		WHERE usuario_id = $1 AND prestamo > 0
		ORDER BY apellido, nombre`, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clientes_oficial WHERE usuario_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}
	return clients, total, nil
}

// ApplyTerms sets the post-interest balance in one conditional statement.
// When no row matches, a follow-up read of plazo_meses tells a missing client,
// one whose terms were already applied and one whose balance no longer equals
// the principal apart.
func (r *ClientRepository) ApplyTerms(ctx context.Context, ownerID, clientID string, principal, balance decimal.Decimal, termMonths, dueDay int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE clientes_oficial
		SET prestamo = $1, plazo_meses = $2, dia_pago = $3
		WHERE id = $4 AND usuario_id = $5 AND plazo_meses IS NULL AND prestamo = $6`,
		balance, termMonths, dueDay, clientID, ownerID, principal,
	)
	if err != nil {
		return fmt.Errorf("apply terms: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply terms: %w", err)
	}
	if n == 1 {
		return nil
	}

	var term sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		`SELECT plazo_meses FROM clientes_oficial WHERE id = $1 AND usuario_id = $2`, clientID, ownerID,
	).Scan(&term)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrClientNotFound
	case err != nil:
		return fmt.Errorf("apply terms: %w", err)
	case term.Valid:
		return domain.ErrTermsAlreadyApplied
	}
	return domain.ErrPrincipalMismatch
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func clientExists(ctx context.Context, q queryRower, ownerID, clientID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM clientes_oficial WHERE id = $1 AND usuario_id = $2`, clientID, ownerID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check client: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var (
		c          domain.Client
		dueDay     sql.NullInt64
		termMonths sql.NullInt64
		created    int64
	)
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.FirstName, &c.LastName, &c.Phone, &c.Address, &c.GuarantorName, &c.GuarantorPhone,
		&c.Balance, &dueDay, &termMonths,
		&c.Documents.ClientID, &c.Documents.GuarantorID, &c.Documents.ProofOfAddress,
		&created,
	)
	if err != nil {
		return nil, err
	}
	c.DueDay = int(dueDay.Int64)
	c.TermMonths = int(termMonths.Int64)
	c.CreatedAt = fromMillis(created)
	return &c, nil
}

func nullableInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
