package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prestamos/loan-tracker/internal/api/middleware"
	"github.com/prestamos/loan-tracker/internal/api/web"
	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

type AuthHandler struct {
	accounts     ports.AccountService
	cookieSecure bool
	logger       zerolog.Logger
}

func NewAuthHandler(accounts ports.AccountService, cookieSecure bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, cookieSecure: cookieSecure, logger: logger}
}

// LoginPage renders the login form (GET /).
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, web.PageLogin, web.Page{
		Title: "Iniciar sesión",
		Flash: web.PopFlash(c),
	})
}

// Login checks the credentials and opens a session (POST /login).
func (h *AuthHandler) Login(c echo.Context) error {
	var form credentialsForm
	if err := c.Bind(&form); err != nil || c.Validate(&form) != nil {
		return redirectWithFlash(c, "/", web.FlashDanger, "Credenciales inválidas")
	}

	session, err := h.accounts.Authenticate(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return redirectWithFlash(c, "/", web.FlashDanger, "Credenciales inválidas")
		}
		h.logger.Error().Err(err).Msg("login failed")
		return redirectWithFlash(c, "/", web.FlashDanger, "Error interno del servidor")
	}

	middleware.SetSessionCookie(c, session.Token, session.ExpiresAt, h.cookieSecure)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// RegisterPage renders the sign-up form (GET /registro).
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, web.PageRegister, web.Page{
		Title: "Registro",
		Flash: web.PopFlash(c),
	})
}

// Register creates an account (POST /registro).
func (h *AuthHandler) Register(c echo.Context) error {
	var form credentialsForm
	if err := c.Bind(&form); err != nil {
		return redirectWithFlash(c, "/registro", web.FlashDanger, "Datos de registro inválidos")
	}
	if err := c.Validate(&form); err != nil {
		return redirectWithFlash(c, "/registro", web.FlashDanger, err.Error())
	}

	_, err := h.accounts.Register(c.Request().Context(), form.Username, form.Password)
	switch {
	case err == nil:
		return redirectWithFlash(c, "/", web.FlashSuccess, "Usuario registrado con éxito")
	case errors.Is(err, domain.ErrAccountExists):
		return redirectWithFlash(c, "/registro", web.FlashDanger, "El nombre de usuario ya está en uso")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return redirectWithFlash(c, "/registro", web.FlashDanger, "El usuario debe tener entre 3 y 64 caracteres y la contraseña hasta 72")
	default:
		h.logger.Error().Err(err).Msg("registration failed")
		return redirectWithFlash(c, "/registro", web.FlashDanger, "Ocurrió un error al registrar el usuario")
	}
}

// Logout revokes the session and clears the cookie (POST /logout).
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.accounts.Logout(c.Request().Context(), cookie.Value); err != nil {
			h.logger.Warn().Err(err).Msg("logout could not revoke session")
		}
	}
	middleware.ClearSessionCookie(c, h.cookieSecure)
	return c.Redirect(http.StatusSeeOther, "/")
}

func redirectWithFlash(c echo.Context, to, kind, message string) error {
	web.SetFlash(c, kind, message)
	return c.Redirect(http.StatusSeeOther, to)
}
