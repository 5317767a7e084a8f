package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prestamos/loan-tracker/internal/api/requestctx"
	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "sesion"

// ContextKeyAccountID is the echo context key holding the authenticated account.
const ContextKeyAccountID = "account_id"

// SessionResolver maps a session token to its account.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (string, error)
}

// RequireSession guards HTML pages: visitors without a live session are sent
// back to the login page.
func RequireSession(resolver SessionResolver) echo.MiddlewareFunc {
	return session(resolver, func(c echo.Context) error {
		ClearSessionCookie(c, false)
		return c.Redirect(http.StatusSeeOther, "/")
	})
}

// RequireSessionAPI guards JSON endpoints and answers 401 instead of redirecting.
func RequireSessionAPI(resolver SessionResolver) echo.MiddlewareFunc {
	return session(resolver, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	})
}

func session(resolver SessionResolver, deny echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return deny(c)
			}

			accountID, err := resolver.ResolveSession(c.Request().Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					return deny(c)
				}
				return err
			}

			c.Set(ContextKeyAccountID, accountID)
			c.SetRequest(c.Request().WithContext(requestctx.WithAccountID(c.Request().Context(), accountID)))
			return next(c)
		}
	}
}

// SetSessionCookie stores token in an HttpOnly cookie that expires with the
// session.
func SetSessionCookie(c echo.Context, token string, expires time.Time, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
