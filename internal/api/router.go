package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/prestamos/loan-tracker/internal/api/docs"
	"github.com/prestamos/loan-tracker/internal/api/handler"
	"github.com/prestamos/loan-tracker/internal/api/middleware"
	"github.com/prestamos/loan-tracker/internal/api/web"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

// Dependencies is everything the HTTP layer needs from the rest of the
// service.
type Dependencies struct {
	Accounts ports.AccountService
	Clients  ports.ClientService
	Payments ports.PaymentService

	// Checks back the readiness probe.
	Checks []handler.DependencyCheck

	Logger         zerolog.Logger
	CookieSecure   bool
	MaxUploadBytes int64

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: deps.Registerer,
	}))
	// The body limit runs first: the CSRF check parses form bodies, the
	// multipart upload included.
	e.Use(echomiddleware.BodyLimit(strconv.FormatInt(deps.MaxUploadBytes, 10)))
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:" + web.CSRFField,
		ContextKey:     web.CSRFContextKey,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   deps.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Accounts, deps.CookieSecure, deps.Logger)
	clientHandler := handler.NewClientHandler(deps.Clients, deps.Payments, deps.Logger)
	paymentHandler := handler.NewPaymentHandler(deps.Payments, deps.Logger)
	apiHandler := handler.NewAPIHandler(deps.Clients, deps.Payments)

	// --- Public pages ---
	e.GET("/", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.GET("/registro", authHandler.RegisterPage)
	e.POST("/registro", authHandler.Register)
	e.POST("/logout", authHandler.Logout)

	// --- Pages behind a session ---
	// Guarded per route; a prefix-less group would swallow unknown paths too.
	session := middleware.RequireSession(deps.Accounts)
	e.GET("/dashboard", clientHandler.Dashboard, session)
	e.GET("/nuevo_cliente", clientHandler.NewClientPage, session)
	e.POST("/nuevo_cliente", clientHandler.CreateClient, session)
	e.GET("/metodos_pago/:id/:prestamo", clientHandler.TermsPage, session)
	e.POST("/metodos_pago/:id/:prestamo", clientHandler.ApplyTerms, session)
	e.POST("/registro_pago", paymentHandler.RecordPayment, session)
	e.GET("/clientes/:id", clientHandler.ClientDetail, session)
	e.GET("/documentos/:key", clientHandler.Document, session)

	// --- JSON API ---
	v1 := e.Group("/api/v1", middleware.RequireSessionAPI(deps.Accounts))
	v1.GET("/clients", apiHandler.ListClients)
	v1.GET("/clients/:id/payments", apiHandler.ListPayments)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: deps.Gatherer,
	}))

	return e, nil
}
