package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prestamos/loan-tracker/internal/api/middleware"
	"github.com/prestamos/loan-tracker/internal/api/web"
	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// errorResponse is the canonical error envelope for the JSON API.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Answers /api/ requests with {"error": "<message>"} and renders the
//     error page for everything else.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}

		page := web.Page{
			Title: http.StatusText(code),
			Data:  web.ErrorData{Code: code, Message: msg},
		}
		if id, ok := c.Get(middleware.ContextKeyAccountID).(string); ok {
			page.AccountID = id
		}
		if rerr := c.Render(code, web.PageError, page); rerr != nil {
			log.Warn().Err(rerr).Msg("error page render failed")
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, "cliente no encontrado"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "documento no encontrado"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, "sesión no válida"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidTerm),
		errors.Is(err, domain.ErrInvalidDueDay),
		errors.Is(err, domain.ErrMissingDocument),
		errors.Is(err, domain.ErrInvalidProfile):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountExceedsBalance),
		errors.Is(err, domain.ErrTermsAlreadyApplied),
		errors.Is(err, domain.ErrPrincipalMismatch):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, "el usuario ya existe"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "credenciales inválidas"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "error interno del servidor"
}
