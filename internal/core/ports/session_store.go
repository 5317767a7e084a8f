package ports

import (
	"context"
	"time"
)

// SessionStore keeps live session ids so they can be revoked before the
// token expires.
type SessionStore interface {
	Save(ctx context.Context, sessionID, accountID string, ttl time.Duration) error
	// Lookup returns the account id, or domain.ErrSessionNotFound.
	Lookup(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}
