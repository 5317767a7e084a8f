package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prestamos/loan-tracker/internal/core/ports"
)

// APIHandler exposes read-only JSON views of the account's portfolio.
type APIHandler struct {
	clients  ports.ClientService
	payments ports.PaymentService
}

func NewAPIHandler(clients ports.ClientService, payments ports.PaymentService) *APIHandler {
	return &APIHandler{clients: clients, payments: payments}
}

// --- Response types ---

type clientResponse struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	GuarantorName  string `json:"guarantor_name"`
	GuarantorPhone string `json:"guarantor_phone"`
	Balance        string `json:"balance" example:"1100.00"`
	TermMonths     int    `json:"term_months,omitempty" example:"6"`
	DueDay         int    `json:"due_day,omitempty" example:"15"`
	CreatedAt      string `json:"created_at"`
}

type listClientsResponse struct {
	Clients      []clientResponse `json:"clients"`
	TotalClients int              `json:"total_clients"`
}

type paymentResponse struct {
	ID     string `json:"id"`
	Amount string `json:"amount" example:"200.00"`
	PaidAt string `json:"paid_at"`
}

type listPaymentsResponse struct {
	ClientID string            `json:"client_id"`
	Payments []paymentResponse `json:"payments"`
}

// ListClients returns the clients with an outstanding balance.
//
// @Summary      List clients with debt
// @Description  Clients of the logged-in account whose balance is above zero, ordered by last name, plus the count of all the account's clients.
// @Tags         clients
// @Produce      json
// @Success      200  {object}  listClientsResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/clients [get]
func (h *APIHandler) ListClients(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	list, err := h.clients.ListWithDebt(c.Request().Context(), owner)
	if err != nil {
		return err
	}

	resp := listClientsResponse{
		Clients:      make([]clientResponse, 0, len(list.WithDebt)),
		TotalClients: list.TotalClients,
	}
	for i := range list.WithDebt {
		resp.Clients = append(resp.Clients, toClientResponse(&list.WithDebt[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// ListPayments returns a client's payment history.
//
// @Summary      List payments of a client
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  listPaymentsResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/clients/{id}/payments [get]
func (h *APIHandler) ListPayments(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	clientID := c.Param("id")

	payments, err := h.payments.ListPayments(c.Request().Context(), owner, clientID)
	if err != nil {
		return err
	}

	resp := listPaymentsResponse{
		ClientID: clientID,
		Payments: make([]paymentResponse, 0, len(payments)),
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}
	return c.JSON(http.StatusOK, resp)
}
