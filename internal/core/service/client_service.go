package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

type ClientService struct {
	repo    ports.ClientRepository
	docs    ports.DocumentStore
	logger  zerolog.Logger
	metrics ports.Metrics
}

func NewClientService(repo ports.ClientRepository, docs ports.DocumentStore, logger zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, docs: docs, logger: logger, metrics: nopMetrics{}}
}

func (s *ClientService) WithMetrics(m ports.Metrics) *ClientService {
	s.metrics = m
	return s
}

// Create stores the three documents and then inserts the client with the
// principal as its balance. Documents already written are removed if a later
// step fails.
func (s *ClientService) Create(ctx context.Context, input ports.CreateClientInput) (*domain.Client, error) {
	if !input.Principal.IsPositive() || !input.Principal.Equal(input.Principal.Truncate(domain.MoneyPlaces)) {
		return nil, domain.ErrInvalidAmount
	}
	profile := normalizeProfile(input.Profile)
	if profile.FirstName == "" || profile.LastName == "" {
		return nil, domain.ErrInvalidProfile
	}

	uploads := []*ports.DocumentUpload{
		input.Documents.ClientID,
		input.Documents.GuarantorID,
		input.Documents.ProofOfAddress,
	}
	for _, u := range uploads {
		if u == nil || u.Content == nil || u.Size <= 0 {
			return nil, domain.ErrMissingDocument
		}
	}

	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key, err := s.docs.Put(ctx, input.OwnerID, *u)
		if err != nil {
			s.discardDocuments(keys)
			return nil, fmt.Errorf("store document %q: %w", u.Filename, err)
		}
		keys = append(keys, key)
	}

	client := &domain.Client{
		ID:      uuid.NewString(),
		OwnerID: input.OwnerID,
		Profile: profile,
		Balance: input.Principal,
		Documents: domain.Documents{
			ClientID:       keys[0],
			GuarantorID:    keys[1],
			ProofOfAddress: keys[2],
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, client); err != nil {
		s.logger.Error().Err(err).Str("owner_id", input.OwnerID).Msg("failed to create client")
		s.discardDocuments(keys)
		return nil, err
	}

	s.metrics.ClientCreated()
	s.logger.Info().Str("client_id", client.ID).Str("owner_id", client.OwnerID).Msg("client created")
	return client, nil
}

func (s *ClientService) ListWithDebt(ctx context.Context, ownerID string) (*ports.ClientList, error) {
	clients, total, err := s.repo.ListWithDebt(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &ports.ClientList{WithDebt: clients, TotalClients: total}, nil
}

func (s *ClientService) Get(ctx context.Context, ownerID, clientID string) (*domain.Client, error) {
	return s.repo.FindByID(ctx, ownerID, clientID)
}

// ApplyTerms replaces the client's principal with the balance owed under the
// chosen plan and returns it.
func (s *ClientService) ApplyTerms(ctx context.Context, input ports.ApplyTermsInput) (decimal.Decimal, error) {
	balance, err := domain.BalanceWithInterest(input.Principal, input.TermMonths)
	if err != nil {
		return decimal.Zero, err
	}
	if err := domain.ValidateDueDay(input.DueDay); err != nil {
		return decimal.Zero, err
	}

	client, err := s.repo.FindByID(ctx, input.OwnerID, input.ClientID)
	if err != nil {
		return decimal.Zero, err
	}
	if client.TermsApplied() {
		return decimal.Zero, domain.ErrTermsAlreadyApplied
	}
	if !client.Balance.Equal(input.Principal) {
		return decimal.Zero, domain.ErrPrincipalMismatch
	}

	if err := s.repo.ApplyTerms(ctx, input.OwnerID, input.ClientID, input.Principal, balance, input.TermMonths, input.DueDay); err != nil {
		return decimal.Zero, err
	}

	s.metrics.TermsApplied(input.TermMonths)
	s.logger.Info().
		Str("client_id", input.ClientID).
		Int("term_months", input.TermMonths).
		Int("due_day", input.DueDay).
		Str("balance", domain.FormatMoney(balance)).
		Msg("loan terms applied")
	return balance, nil
}

// OpenDocument returns a document only to the account that uploaded it.
func (s *ClientService) OpenDocument(ctx context.Context, ownerID, key string) (*ports.StoredDocument, error) {
	doc, err := s.docs.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		_ = doc.Content.Close()
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *ClientService) discardDocuments(keys []string) {
	if len(keys) == 0 {
		return
	}
	// the request context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := s.docs.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
			s.logger.Warn().Err(err).Str("document_key", key).Msg("failed to remove orphan document")
		}
	}
}

func normalizeProfile(p domain.Profile) domain.Profile {
	return domain.Profile{
		FirstName:      strings.TrimSpace(p.FirstName),
		LastName:       strings.TrimSpace(p.LastName),
		Phone:          strings.TrimSpace(p.Phone),
		Address:        strings.TrimSpace(p.Address),
		GuarantorName:  strings.TrimSpace(p.GuarantorName),
		GuarantorPhone: strings.TrimSpace(p.GuarantorPhone),
	}
}
