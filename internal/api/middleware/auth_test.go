package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prestamos/loan-tracker/internal/api/requestctx"
	"github.com/prestamos/loan-tracker/internal/core/domain"
)

type stubResolver struct {
	accounts map[string]string
	err      error
}

func (r *stubResolver) ResolveSession(_ context.Context, token string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	id, ok := r.accounts[token]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return id, nil
}

func newContext(cookie string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireSession_ValidCookie(t *testing.T) {
	c, rec := newContext("tok")
	resolver := &stubResolver{accounts: map[string]string{"tok": "alice"}}

	called := false
	handler := RequireSession(resolver)(func(c echo.Context) error {
		called = true
		if c.Get(ContextKeyAccountID) != "alice" {
			t.Fatalf("account_id not set")
		}
		if requestctx.AccountIDFromContext(c.Request().Context()) != "alice" {
			t.Fatalf("account id not propagated to request context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireSession_RedirectsWithoutSession(t *testing.T) {
	for _, cookie := range []string{"", "revoked"} {
		c, rec := newContext(cookie)
		handler := RequireSession(&stubResolver{})(func(c echo.Context) error {
			t.Fatalf("next must not be called")
			return nil
		})

		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("cookie %q: expected 303, got %d", cookie, rec.Code)
		}
		if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
			t.Fatalf("expected redirect to /, got %q", loc)
		}
	}
}

func TestRequireSessionAPI_Unauthorized(t *testing.T) {
	c, _ := newContext("")
	handler := RequireSessionAPI(&stubResolver{})(func(c echo.Context) error {
		t.Fatalf("next must not be called")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestRequireSession_StoreFailureIsReturned(t *testing.T) {
	c, _ := newContext("tok")
	boom := errors.New("redis down")
	handler := RequireSession(&stubResolver{err: boom})(func(c echo.Context) error {
		t.Fatalf("next must not be called")
		return nil
	})

	if err := handler(c); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestSessionCookieHelpers(t *testing.T) {
	c, rec := newContext("")
	ClearSessionCookie(c, true)

	header := rec.Header().Get("Set-Cookie")
	if !strings.Contains(header, SessionCookieName+"=") || !strings.Contains(header, "Max-Age=0") {
		t.Fatalf("unexpected Set-Cookie: %q", header)
	}
	if !strings.Contains(header, "HttpOnly") || !strings.Contains(header, "Secure") {
		t.Fatalf("cookie flags missing: %q", header)
	}
}

func TestRequestLogger_WritesEntry(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	c, _ := newContext("")
	c.Set(ContextKeyAccountID, "alice")

	handler := RequestLogger(log)(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"status":204`, `"uri":"/dashboard"`, `"account_id":"alice"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log entry missing %s: %s", want, out)
		}
	}
}
