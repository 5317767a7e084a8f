package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/api/web"
	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

func TestPaymentHandler_RecordPayment(t *testing.T) {
	cases := []struct {
		name    string
		amount  string
		err     error
		kind    string
		message string
	}{
		{"success", "200", nil, web.FlashSuccess, "Pago registrado con éxito"},
		{"not numeric", "abc", nil, web.FlashDanger, "El monto pagado no es un valor numérico válido."},
		{"unknown client", "200", domain.ErrClientNotFound, web.FlashDanger, "Cliente no encontrado."},
		{"over balance", "5000", domain.ErrAmountExceedsBalance, web.FlashDanger, "El monto a abonar no puede ser mayor a la deuda."},
		{"too small", "0.50", domain.ErrAmountTooSmall, web.FlashDanger, "El monto a abonar debe ser mayor o igual a 1."},
		{"store failure", "200", errors.New("db down"), web.FlashDanger, "Error al registrar el pago."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho(t)
			stub := &stubPaymentService{
				recordFn: func(ctx context.Context, input ports.RecordPaymentInput) (*ports.PaymentResult, error) {
					if input.OwnerID != "alice" || input.ClientID != "c1" {
						t.Fatalf("unexpected input: %+v", input)
					}
					if tc.err != nil {
						return nil, tc.err
					}
					return &ports.PaymentResult{
						Payment: domain.Payment{ID: "p1", ClientID: "c1", Amount: input.Amount},
						Balance: decimal.NewFromInt(900),
					}, nil
				},
			}
			h := NewPaymentHandler(stub, zerolog.Nop())
			form := url.Values{"id_cliente": {"c1"}, "monto_pagado": {tc.amount}}
			c, rec := authed(e, formRequest(http.MethodPost, "/registro_pago", form), "alice")

			if err := h.RecordPayment(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			assertRedirect(t, rec, "/dashboard")
			assertFlash(t, rec, tc.kind, tc.message)
		})
	}
}

func TestPaymentHandler_RecordPayment_MissingClient(t *testing.T) {
	e := newTestEcho(t)
	stub := &stubPaymentService{
		recordFn: func(context.Context, ports.RecordPaymentInput) (*ports.PaymentResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	h := NewPaymentHandler(stub, zerolog.Nop())
	c, rec := authed(e, formRequest(http.MethodPost, "/registro_pago", url.Values{"monto_pagado": {"10"}}), "alice")

	if err := h.RecordPayment(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assertRedirect(t, rec, "/dashboard")
	assertFlash(t, rec, web.FlashDanger, "El monto pagado no es un valor numérico válido.")
}

func TestPaymentHandler_RecordPayment_FourDecimals(t *testing.T) {
	cases := []struct {
		amount  string
		called  bool
		message string
	}{
		{"349.9965", true, "Pago registrado con éxito"},
		{"49.9965", true, "Pago registrado con éxito"},
		{"349.99651", false, "El monto pagado no es un valor numérico válido."},
	}

	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			e := newTestEcho(t)
			called := false
			stub := &stubPaymentService{
				recordFn: func(_ context.Context, input ports.RecordPaymentInput) (*ports.PaymentResult, error) {
					called = true
					if !input.Amount.Equal(decimal.RequireFromString(tc.amount)) {
						t.Fatalf("amount changed on the way in: %s", input.Amount)
					}
					return &ports.PaymentResult{Balance: decimal.Zero}, nil
				},
			}
			h := NewPaymentHandler(stub, zerolog.Nop())
			form := url.Values{"id_cliente": {"c1"}, "monto_pagado": {tc.amount}}
			c, rec := authed(e, formRequest(http.MethodPost, "/registro_pago", form), "alice")

			if err := h.RecordPayment(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if called != tc.called {
				t.Fatalf("service called = %v, want %v", called, tc.called)
			}
			kind := web.FlashSuccess
			if !tc.called {
				kind = web.FlashDanger
			}
			assertFlash(t, rec, kind, tc.message)
		})
	}
}
