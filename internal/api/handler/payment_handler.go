package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prestamos/loan-tracker/internal/api/web"
	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

type PaymentHandler struct {
	payments ports.PaymentService
	logger   zerolog.Logger
}

func NewPaymentHandler(payments ports.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

// RecordPayment applies a payment from the dashboard and always returns to
// it (POST /registro_pago).
func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	var form paymentForm
	if err := c.Bind(&form); err != nil || c.Validate(&form) != nil {
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El monto pagado no es un valor numérico válido.")
	}
	amount, err := domain.ParseAmountPlaces(form.Amount, domain.StoragePlaces)
	if err != nil {
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El monto pagado no es un valor numérico válido.")
	}

	_, err = h.payments.RecordPayment(c.Request().Context(), ports.RecordPaymentInput{
		OwnerID:  owner,
		ClientID: form.ClientID,
		Amount:   amount,
	})
	switch {
	case err == nil:
		return redirectWithFlash(c, "/dashboard", web.FlashSuccess, "Pago registrado con éxito")
	case errors.Is(err, domain.ErrClientNotFound):
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "Cliente no encontrado.")
	case errors.Is(err, domain.ErrInvalidAmount):
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El monto pagado no es un valor numérico válido.")
	case errors.Is(err, domain.ErrAmountExceedsBalance):
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El monto a abonar no puede ser mayor a la deuda.")
	case errors.Is(err, domain.ErrAmountTooSmall):
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El monto a abonar debe ser mayor o igual a 1.")
	default:
		h.logger.Error().Err(err).Str("client_id", form.ClientID).Msg("payment failed")
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "Error al registrar el pago.")
	}
}
