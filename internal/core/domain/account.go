package domain

import (
	"errors"
	"time"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// Account is a tenant of the system. Every client record belongs to exactly
// one account, and the account ID is the user-chosen login name.
type Account struct {
	ID           string    `json:"id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an authenticated login. Token is the signed value handed to the
// browser; ID is the server-side handle used for revocation.
type Session struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
}
