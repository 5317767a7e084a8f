package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Accounts and sessions
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	accounts map[string]*domain.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) error {
	if _, exists := r.accounts[account.ID]; exists {
		return domain.ErrAccountExists
	}
	clone := *account
	r.accounts[account.ID] = &clone
	return nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

type stubSessionStore struct {
	sessions map[string]string
	ttls     map[string]time.Duration
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		sessions: make(map[string]string),
		ttls:     make(map[string]time.Duration),
	}
}

func (s *stubSessionStore) Save(_ context.Context, sessionID, accountID string, ttl time.Duration) error {
	s.sessions[sessionID] = accountID
	s.ttls[sessionID] = ttl
	return nil
}

func (s *stubSessionStore) Lookup(_ context.Context, sessionID string) (string, error) {
	id, ok := s.sessions[sessionID]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return id, nil
}

func (s *stubSessionStore) Delete(_ context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

// ---------------------------------------------------------------------------
// Clients and payments share one in-memory ledger, mirroring the two tables
// the SQL repositories update together.
// ---------------------------------------------------------------------------

type stubLedger struct {
	mu        sync.Mutex
	clients   map[string]*domain.Client
	payments  []domain.Payment
	createErr error
}

func newStubLedger() *stubLedger {
	return &stubLedger{clients: make(map[string]*domain.Client)}
}

func (l *stubLedger) Create(_ context.Context, c *domain.Client) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.createErr != nil {
		return l.createErr
	}
	clone := *c
	l.clients[c.ID] = &clone
	return nil
}

func (l *stubLedger) FindByID(_ context.Context, ownerID, clientID string) (*domain.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.clients[clientID]
	if !ok || c.OwnerID != ownerID {
		return nil, domain.ErrClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (l *stubLedger) ListWithDebt(_ context.Context, ownerID string) ([]domain.Client, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Client
	total := 0
	for _, c := range l.clients {
		if c.OwnerID != ownerID {
			continue
		}
		total++
		if c.HasDebt() {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, total, nil
}

func (l *stubLedger) ApplyTerms(_ context.Context, ownerID, clientID string, principal, balance decimal.Decimal, termMonths, dueDay int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.clients[clientID]
	if !ok || c.OwnerID != ownerID {
		return domain.ErrClientNotFound
	}
	if c.TermsApplied() {
		return domain.ErrTermsAlreadyApplied
	}
	if !c.Balance.Equal(principal) {
		return domain.ErrPrincipalMismatch
	}
	c.Balance = balance
	c.TermMonths = termMonths
	c.DueDay = dueDay
	return nil
}

func (l *stubLedger) Apply(_ context.Context, ownerID string, p *domain.Payment) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.clients[p.ClientID]
	if !ok || c.OwnerID != ownerID {
		return decimal.Zero, domain.ErrClientNotFound
	}
	if c.Balance.LessThan(p.Amount) {
		return decimal.Zero, domain.ErrAmountExceedsBalance
	}
	c.Balance = c.Balance.Sub(p.Amount)
	l.payments = append(l.payments, *p)
	return c.Balance, nil
}

func (l *stubLedger) ListByClient(_ context.Context, ownerID, clientID string) ([]domain.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Payment
	for i := len(l.payments) - 1; i >= 0; i-- {
		if l.payments[i].ClientID == clientID {
			out = append(out, l.payments[i])
		}
	}
	return out, nil
}

// seed inserts a client directly, bypassing the service.
func (l *stubLedger) seed(ownerID, balance string, termMonths int) *domain.Client {
	c := &domain.Client{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Profile:    domain.Profile{FirstName: "Ana", LastName: "Lopez"},
		Balance:    decimal.RequireFromString(balance),
		TermMonths: termMonths,
	}
	if termMonths != 0 {
		c.DueDay = 15
	}
	_ = l.Create(context.Background(), c)
	return c
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

type storedBlob struct {
	ownerID string
	doc     ports.DocumentUpload
	data    []byte
}

type stubDocumentStore struct {
	blobs   map[string]storedBlob
	failAt  int // Put call number (1-based) that fails; 0 disables
	calls   int
	deleted []string
}

func newStubDocumentStore() *stubDocumentStore {
	return &stubDocumentStore{blobs: make(map[string]storedBlob)}
}

func (s *stubDocumentStore) Put(_ context.Context, ownerID string, doc ports.DocumentUpload) (string, error) {
	s.calls++
	if s.failAt != 0 && s.calls == s.failAt {
		return "", io.ErrUnexpectedEOF
	}
	data, err := io.ReadAll(doc.Content)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()
	s.blobs[key] = storedBlob{ownerID: ownerID, doc: doc, data: data}
	return key, nil
}

func (s *stubDocumentStore) Open(_ context.Context, key string) (*ports.StoredDocument, error) {
	b, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return &ports.StoredDocument{
		Key:         key,
		OwnerID:     b.ownerID,
		Filename:    b.doc.Filename,
		ContentType: b.doc.ContentType,
		Size:        int64(len(b.data)),
		Content:     io.NopCloser(bytes.NewReader(b.data)),
	}, nil
}

func (s *stubDocumentStore) Delete(_ context.Context, key string) error {
	if _, ok := s.blobs[key]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(s.blobs, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func upload(name, body string) *ports.DocumentUpload {
	return &ports.DocumentUpload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Content:     bytes.NewReader([]byte(body)),
	}
}

func fullDocuments() ports.ClientDocuments {
	return ports.ClientDocuments{
		ClientID:       upload("ine.png", "client-id"),
		GuarantorID:    upload("ine_aval.png", "guarantor-id"),
		ProofOfAddress: upload("luz.png", "proof"),
	}
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// recordingMetrics keeps every event as a short string such as
// "rejected:exceeds_balance".
type recordingMetrics struct {
	mu     sync.Mutex
	events []string
}

func (m *recordingMetrics) add(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, fmt.Sprintf(format, args...))
}

func (m *recordingMetrics) LoginAttempt(result string) { m.add("login:%s", result) }
func (m *recordingMetrics) AccountRegistered()         { m.add("registered") }
func (m *recordingMetrics) ClientCreated()             { m.add("client") }
func (m *recordingMetrics) TermsApplied(termMonths int) {
	m.add("terms:%d", termMonths)
}
func (m *recordingMetrics) PaymentRecorded(amount decimal.Decimal) {
	m.add("recorded:%s", domain.FormatMoney(amount))
}
func (m *recordingMetrics) PaymentRejected(reason string) { m.add("rejected:%s", reason) }

func (m *recordingMetrics) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}
