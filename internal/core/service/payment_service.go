package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

type PaymentService struct {
	clients  ports.ClientRepository
	payments ports.PaymentRepository
	logger   zerolog.Logger
	metrics  ports.Metrics
}

func NewPaymentService(clients ports.ClientRepository, payments ports.PaymentRepository, logger zerolog.Logger) *PaymentService {
	return &PaymentService{clients: clients, payments: payments, logger: logger, metrics: nopMetrics{}}
}

// WithMetrics sets the recorder for accepted and rejected payments.
func (s *PaymentService) WithMetrics(m ports.Metrics) *PaymentService {
	s.metrics = m
	return s
}

// RecordPayment validates the amount against the client's current balance and
// commits the payment. The repository repeats the balance check at write time
// so two concurrent payments can never overdraw the balance.
func (s *PaymentService) RecordPayment(ctx context.Context, input ports.RecordPaymentInput) (*ports.PaymentResult, error) {
	client, err := s.clients.FindByID(ctx, input.OwnerID, input.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			s.metrics.PaymentRejected("client_not_found")
		}
		return nil, err
	}

	if err := domain.ValidatePaymentAmount(input.Amount, client.Balance); err != nil {
		s.reject(input, err)
		return nil, err
	}

	payment := &domain.Payment{
		ID:       uuid.NewString(),
		ClientID: client.ID,
		Amount:   input.Amount,
		PaidAt:   time.Now().UTC(),
	}
	balance, err := s.payments.Apply(ctx, input.OwnerID, payment)
	if err != nil {
		s.reject(input, err)
		return nil, err
	}

	s.metrics.PaymentRecorded(input.Amount)
	s.logger.Info().
		Str("client_id", client.ID).
		Str("payment_id", payment.ID).
		Str("amount", domain.FormatMoney(payment.Amount)).
		Str("balance", domain.FormatMoney(balance)).
		Msg("payment recorded")

	return &ports.PaymentResult{Payment: *payment, Balance: balance}, nil
}

// ListPayments returns the client's payment history, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, ownerID, clientID string) ([]domain.Payment, error) {
	if _, err := s.clients.FindByID(ctx, ownerID, clientID); err != nil {
		return nil, err
	}
	return s.payments.ListByClient(ctx, ownerID, clientID)
}

func (s *PaymentService) reject(input ports.RecordPaymentInput, err error) {
	var reason string
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		reason = "client_not_found"
	case errors.Is(err, domain.ErrInvalidAmount):
		reason = "invalid_amount"
	case errors.Is(err, domain.ErrAmountTooSmall):
		reason = "amount_too_small"
	case errors.Is(err, domain.ErrAmountExceedsBalance):
		reason = "exceeds_balance"
	default:
		s.logger.Error().Err(err).Str("client_id", input.ClientID).Msg("failed to record payment")
		return
	}
	s.metrics.PaymentRejected(reason)
	s.logger.Info().
		Str("client_id", input.ClientID).
		Str("amount", domain.FormatMoney(input.Amount)).
		Str("reason", reason).
		Msg("payment rejected")
}
