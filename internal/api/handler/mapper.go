package handler

import (
	"time"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// --- Domain → Response ---

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Phone:          c.Phone,
		Address:        c.Address,
		GuarantorName:  c.GuarantorName,
		GuarantorPhone: c.GuarantorPhone,
		Balance:        domain.FormatMoney(c.Balance),
		TermMonths:     c.TermMonths,
		DueDay:         c.DueDay,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
}

func toPaymentResponse(p domain.Payment) paymentResponse {
	return paymentResponse{
		ID:     p.ID,
		Amount: domain.FormatMoney(p.Amount),
		PaidAt: p.PaidAt.Format(time.RFC3339),
	}
}
