package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/api/middleware"
	"github.com/prestamos/loan-tracker/internal/api/web"
	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Echo setup
// ---------------------------------------------------------------------------

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = renderer
	e.Validator = NewValidator()
	return e
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

// authed returns a context that already passed the session middleware.
func authed(e *echo.Echo, req *http.Request, accountID string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeyAccountID, accountID)
	return c, rec
}

// flashFrom replays the response cookies into a new request and pops the flash.
func flashFrom(rec *httptest.ResponseRecorder) *web.Flash {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	return web.PopFlash(echo.New().NewContext(req, httptest.NewRecorder()))
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func assertFlash(t *testing.T, rec *httptest.ResponseRecorder, kind, message string) {
	t.Helper()
	f := flashFrom(rec)
	if f == nil {
		t.Fatalf("expected flash %q, got none", message)
	}
	if f.Kind != kind || f.Message != message {
		t.Fatalf("expected %s flash %q, got %s %q", kind, message, f.Kind, f.Message)
	}
}

type multipartFile struct {
	field, name, body string
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files []multipartFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := part.Write([]byte(f.body)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubAccountService struct {
	registerFn     func(ctx context.Context, identifier, credential string) (*domain.Account, error)
	authenticateFn func(ctx context.Context, identifier, credential string) (*domain.Session, error)
	logoutFn       func(ctx context.Context, token string) error
}

func (s *stubAccountService) Register(ctx context.Context, identifier, credential string) (*domain.Account, error) {
	return s.registerFn(ctx, identifier, credential)
}

func (s *stubAccountService) Authenticate(ctx context.Context, identifier, credential string) (*domain.Session, error) {
	return s.authenticateFn(ctx, identifier, credential)
}

func (s *stubAccountService) ResolveSession(context.Context, string) (string, error) {
	return "", domain.ErrSessionNotFound
}

func (s *stubAccountService) Logout(ctx context.Context, token string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

type stubClientService struct {
	createFn       func(ctx context.Context, input ports.CreateClientInput) (*domain.Client, error)
	listFn         func(ctx context.Context, ownerID string) (*ports.ClientList, error)
	getFn          func(ctx context.Context, ownerID, clientID string) (*domain.Client, error)
	applyTermsFn   func(ctx context.Context, input ports.ApplyTermsInput) (decimal.Decimal, error)
	openDocumentFn func(ctx context.Context, ownerID, key string) (*ports.StoredDocument, error)
}

func (s *stubClientService) Create(ctx context.Context, input ports.CreateClientInput) (*domain.Client, error) {
	return s.createFn(ctx, input)
}

func (s *stubClientService) ListWithDebt(ctx context.Context, ownerID string) (*ports.ClientList, error) {
	return s.listFn(ctx, ownerID)
}

func (s *stubClientService) Get(ctx context.Context, ownerID, clientID string) (*domain.Client, error) {
	return s.getFn(ctx, ownerID, clientID)
}

func (s *stubClientService) ApplyTerms(ctx context.Context, input ports.ApplyTermsInput) (decimal.Decimal, error) {
	return s.applyTermsFn(ctx, input)
}

func (s *stubClientService) OpenDocument(ctx context.Context, ownerID, key string) (*ports.StoredDocument, error) {
	return s.openDocumentFn(ctx, ownerID, key)
}

type stubPaymentService struct {
	recordFn func(ctx context.Context, input ports.RecordPaymentInput) (*ports.PaymentResult, error)
	listFn   func(ctx context.Context, ownerID, clientID string) ([]domain.Payment, error)
}

func (s *stubPaymentService) RecordPayment(ctx context.Context, input ports.RecordPaymentInput) (*ports.PaymentResult, error) {
	return s.recordFn(ctx, input)
}

func (s *stubPaymentService) ListPayments(ctx context.Context, ownerID, clientID string) ([]domain.Payment, error) {
	return s.listFn(ctx, ownerID, clientID)
}
