package ports

import (
	"context"
	"io"
)

// StoredDocument is a document read back from the store. The caller must
// close Content.
type StoredDocument struct {
	Key         string
	OwnerID     string
	Filename    string
	ContentType string
	Size        int64
	Content     io.ReadCloser
}

// DocumentStore persists uploaded files under generated keys.
type DocumentStore interface {
	Put(ctx context.Context, ownerID string, doc DocumentUpload) (string, error)
	// Open returns domain.ErrDocumentNotFound for unknown keys.
	Open(ctx context.Context, key string) (*StoredDocument, error)
	Delete(ctx context.Context, key string) error
}
