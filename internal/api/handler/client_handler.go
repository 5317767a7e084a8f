package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prestamos/loan-tracker/internal/api/web"
	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

// ClientHandler serves the dashboard, client registration, terms selection
// and client detail pages.
type ClientHandler struct {
	clients  ports.ClientService
	payments ports.PaymentService
	logger   zerolog.Logger
}

func NewClientHandler(clients ports.ClientService, payments ports.PaymentService, logger zerolog.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, payments: payments, logger: logger}
}

// Dashboard lists the clients that still owe money (GET /dashboard).
func (h *ClientHandler) Dashboard(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	list, err := h.clients.ListWithDebt(c.Request().Context(), owner)
	if err != nil {
		return fmt.Errorf("load dashboard: %w", err)
	}

	return c.Render(http.StatusOK, web.PageDashboard, web.Page{
		Title:     "Panel",
		AccountID: owner,
		Flash:     web.PopFlash(c),
		Data:      web.DashboardData{Clients: list.WithDebt, TotalClients: list.TotalClients},
	})
}

// NewClientPage renders the registration form (GET /nuevo_cliente).
func (h *ClientHandler) NewClientPage(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, web.PageNewClient, web.Page{
		Title:     "Nuevo cliente",
		AccountID: owner,
		Flash:     web.PopFlash(c),
	})
}

// CreateClient stores the documents and the client, then sends the user on
// to choose the repayment plan (POST /nuevo_cliente).
func (h *ClientHandler) CreateClient(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	var form newClientForm
	if err := c.Bind(&form); err != nil {
		return redirectWithFlash(c, "/nuevo_cliente", web.FlashDanger, "Datos del cliente inválidos.")
	}
	if err := c.Validate(&form); err != nil {
		return redirectWithFlash(c, "/nuevo_cliente", web.FlashDanger, err.Error())
	}

	principal, err := domain.ParseAmount(form.Principal)
	if err != nil || !principal.IsPositive() {
		return redirectWithFlash(c, "/nuevo_cliente", web.FlashDanger, "El monto del préstamo no es válido.")
	}

	docs, closeAll, err := readDocuments(c)
	defer closeAll()
	if err != nil {
		return redirectWithFlash(c, "/nuevo_cliente", web.FlashDanger, "Faltan archivos por subir.")
	}

	client, err := h.clients.Create(c.Request().Context(), ports.CreateClientInput{
		OwnerID: owner,
		Profile: domain.Profile{
			FirstName:      form.FirstName,
			LastName:       form.LastName,
			Phone:          form.Phone,
			Address:        form.Address,
			GuarantorName:  form.GuarantorName,
			GuarantorPhone: form.GuarantorPhone,
		},
		Principal: principal,
		Documents: docs,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidAmount):
		return redirectWithFlash(c, "/nuevo_cliente", web.FlashDanger, "El monto del préstamo no es válido.")
	case errors.Is(err, domain.ErrMissingDocument):
		return redirectWithFlash(c, "/nuevo_cliente", web.FlashDanger, "Faltan archivos por subir.")
	case errors.Is(err, domain.ErrInvalidProfile):
		return redirectWithFlash(c, "/nuevo_cliente", web.FlashDanger, "Nombre y apellido son obligatorios.")
	default:
		h.logger.Error().Err(err).Str("account_id", owner).Msg("client registration failed")
		return redirectWithFlash(c, "/nuevo_cliente", web.FlashDanger, "Error al registrar el cliente.")
	}

	return c.Redirect(http.StatusSeeOther, termsURL(client.ID, domain.FormatMoney(principal)))
}

// TermsPage shows the available repayment plans (GET /metodos_pago/:id/:prestamo).
func (h *ClientHandler) TermsPage(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	principal, err := domain.ParseAmount(c.Param("prestamo"))
	if err != nil || !principal.IsPositive() {
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El monto del préstamo no es válido.")
	}

	client, err := h.clients.Get(c.Request().Context(), owner, c.Param("id"))
	if err != nil {
		return h.clientLookupFailed(c, err)
	}
	if client.TermsApplied() {
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El método de pago ya fue registrado.")
	}

	return c.Render(http.StatusOK, web.PageTerms, web.Page{
		Title:     "Método de pago",
		AccountID: owner,
		Flash:     web.PopFlash(c),
		Data: web.TermsData{
			ClientID:  client.ID,
			Principal: principal,
			Options:   domain.TermOptions(),
		},
	})
}

// ApplyTerms saves the chosen plan (POST /metodos_pago/:id/:prestamo).
func (h *ClientHandler) ApplyTerms(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	clientID := c.Param("id")
	back := termsURL(clientID, c.Param("prestamo"))

	principal, err := domain.ParseAmount(c.Param("prestamo"))
	if err != nil || !principal.IsPositive() {
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El monto del préstamo no es válido.")
	}

	var form termsForm
	if err := c.Bind(&form); err != nil || c.Validate(&form) != nil {
		return redirectWithFlash(c, back, web.FlashDanger, "Selecciones inválidas para meses o día de pago.")
	}

	_, err = h.clients.ApplyTerms(c.Request().Context(), ports.ApplyTermsInput{
		OwnerID:    owner,
		ClientID:   clientID,
		Principal:  principal,
		TermMonths: form.TermMonths,
		DueDay:     form.DueDay,
	})
	switch {
	case err == nil:
		return redirectWithFlash(c, "/dashboard", web.FlashSuccess, "Método de pago registrado con éxito")
	case errors.Is(err, domain.ErrInvalidTerm):
		return redirectWithFlash(c, back, web.FlashDanger, "Plazo de meses inválido.")
	case errors.Is(err, domain.ErrInvalidDueDay):
		return redirectWithFlash(c, back, web.FlashDanger, "Selecciones inválidas para meses o día de pago.")
	case errors.Is(err, domain.ErrTermsAlreadyApplied):
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El método de pago ya fue registrado.")
	case errors.Is(err, domain.ErrPrincipalMismatch):
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "El monto del préstamo no coincide con el registrado.")
	case errors.Is(err, domain.ErrClientNotFound):
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "Cliente no encontrado.")
	default:
		h.logger.Error().Err(err).Str("client_id", clientID).Msg("apply terms failed")
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "Error al registrar el método de pago.")
	}
}

// ClientDetail shows one client with its payment history (GET /clientes/:id).
func (h *ClientHandler) ClientDetail(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	client, err := h.clients.Get(ctx, owner, c.Param("id"))
	if err != nil {
		return h.clientLookupFailed(c, err)
	}
	payments, err := h.payments.ListPayments(ctx, owner, client.ID)
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}

	return c.Render(http.StatusOK, web.PageClient, web.Page{
		Title:     client.FullName(),
		AccountID: owner,
		Flash:     web.PopFlash(c),
		Data:      web.ClientData{Client: client, Payments: payments},
	})
}

// Document streams a stored file to the account that uploaded it
// (GET /documentos/:key).
func (h *ClientHandler) Document(c echo.Context) error {
	owner, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	doc, err := h.clients.OpenDocument(c.Request().Context(), owner, c.Param("key"))
	if err != nil {
		return err
	}
	defer doc.Content.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", doc.Filename))
	return c.Stream(http.StatusOK, doc.ContentType, doc.Content)
}

func (h *ClientHandler) clientLookupFailed(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrClientNotFound) {
		return redirectWithFlash(c, "/dashboard", web.FlashDanger, "Cliente no encontrado.")
	}
	return err
}

// readDocuments opens the three uploaded files. The returned func closes
// whatever was opened and is safe to call on error.
func readDocuments(c echo.Context) (ports.ClientDocuments, func(), error) {
	var (
		docs   ports.ClientDocuments
		opened []multipart.File
	)
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	targets := []struct {
		field string
		dst   **ports.DocumentUpload
	}{
		{fileClientID, &docs.ClientID},
		{fileGuarantorID, &docs.GuarantorID},
		{fileProofOfAddress, &docs.ProofOfAddress},
	}
	for _, t := range targets {
		fh, err := c.FormFile(t.field)
		if err != nil || fh.Size == 0 {
			return docs, closeAll, domain.ErrMissingDocument
		}
		f, err := fh.Open()
		if err != nil {
			return docs, closeAll, fmt.Errorf("open %s: %w", t.field, err)
		}
		opened = append(opened, f)

		contentType := fh.Header.Get(echo.HeaderContentType)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		*t.dst = &ports.DocumentUpload{
			Filename:    fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
			Content:     f,
		}
	}
	return docs, closeAll, nil
}

func termsURL(clientID, principal string) string {
	return "/metodos_pago/" + url.PathEscape(clientID) + "/" + url.PathEscape(principal)
}
