package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

const (
	minIdentifierLen = 3
	maxIdentifierLen = 64
	// bcrypt ignores input past 72 bytes; refuse it instead of truncating.
	maxCredentialLen = 72
)

// AccountService implements registration, login and session resolution.
type AccountService struct {
	repo       ports.AccountRepository
	sessions   ports.SessionStore
	secret     []byte
	sessionTTL time.Duration
	logger     zerolog.Logger
	metrics    ports.Metrics
	now        func() time.Time
}

func NewAccountService(repo ports.AccountRepository, sessions ports.SessionStore, secret string, sessionTTL time.Duration, logger zerolog.Logger) *AccountService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AccountService{
		repo:       repo,
		sessions:   sessions,
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		logger:     logger,
		metrics:    nopMetrics{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics sets the recorder for registrations and login attempts.
func (s *AccountService) WithMetrics(m ports.Metrics) *AccountService {
	s.metrics = m
	return s
}

func (s *AccountService) Register(ctx context.Context, identifier, credential string) (*domain.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || credential == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(identifier) < minIdentifierLen || len(identifier) > maxIdentifierLen || len(credential) > maxCredentialLen {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	account := &domain.Account{
		ID:           identifier,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.metrics.AccountRegistered()
	s.logger.Info().Str("account_id", account.ID).Msg("account registered")
	return account, nil
}

// Authenticate verifies the credential and opens a session. Unknown accounts
// and wrong credentials produce the same error.
func (s *AccountService) Authenticate(ctx context.Context, identifier, credential string) (*domain.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || credential == "" {
		s.metrics.LoginAttempt("invalid")
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByID(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.metrics.LoginAttempt("invalid")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(credential)) != nil {
		s.metrics.LoginAttempt("invalid")
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session.ID, session.AccountID, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.signToken(session, now)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, err
	}
	session.Token = token

	s.metrics.LoginAttempt("success")
	s.logger.Info().Str("account_id", account.ID).Msg("account logged in")
	return session, nil
}

// ResolveSession validates the token and checks the session was not revoked.
func (s *AccountService) ResolveSession(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	accountID, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if accountID != claims.Subject {
		return "", domain.ErrSessionNotFound
	}
	return accountID, nil
}

// Logout revokes the session. Invalid or expired tokens are ignored since
// there is nothing left to revoke.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info().Str("account_id", claims.Subject).Msg("account logged out")
	return nil
}

func (s *AccountService) signToken(session *domain.Session, issuedAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   session.AccountID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *AccountService) parseToken(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, domain.ErrSessionNotFound
	}
	return claims, nil
}
