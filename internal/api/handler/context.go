package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prestamos/loan-tracker/internal/api/middleware"
	"github.com/prestamos/loan-tracker/internal/api/requestctx"
)

// ctxAccountID returns the account injected by the session middleware.
// An empty value means the route was mounted without the middleware.
func ctxAccountID(c echo.Context) (string, error) {
	if id, ok := c.Get(middleware.ContextKeyAccountID).(string); ok && id != "" {
		return id, nil
	}
	if id := requestctx.AccountIDFromContext(c.Request().Context()); id != "" {
		return id, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
}
