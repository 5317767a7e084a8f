package web

import (
	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// Template names.
const (
	PageLogin     = "login"
	PageRegister  = "registro"
	PageDashboard = "dashboard"
	PageNewClient = "nuevo_cliente"
	PageTerms     = "metodos_pago"
	PageClient    = "cliente"
	PageError     = "error"
)

type DashboardData struct {
	Clients      []domain.Client
	TotalClients int
}

type TermsData struct {
	ClientID  string
	Principal decimal.Decimal
	Options   []domain.TermOption
}

type ClientData struct {
	Client   *domain.Client
	Payments []domain.Payment
}

type ErrorData struct {
	Code    int
	Message string
}
