package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prestamos/loan-tracker/internal/core/domain"
	"github.com/prestamos/loan-tracker/internal/core/ports"
)

// DefaultBucket is the GridFS bucket holding client documents.
const DefaultBucket = "documentos"

const (
	metaOwnerID     = "owner_id"
	metaContentType = "content_type"
)

// DocumentStore keeps uploaded files in GridFS. Files are stored under a
// random UUID key with the owning account and content type as metadata.
type DocumentStore struct {
	db     *mongo.Database
	bucket string
}

func NewDocumentStore(db *mongo.Database, bucket string) *DocumentStore {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &DocumentStore{db: db, bucket: bucket}
}

func (s *DocumentStore) Put(ctx context.Context, ownerID string, doc ports.DocumentUpload) (string, error) {
	b, err := s.open(ctx)
	if err != nil {
		return "", err
	}

	key := uuid.NewString()
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: metaOwnerID, Value: ownerID},
		{Key: metaContentType, Value: doc.ContentType},
	})
	if err := b.UploadFromStreamWithID(key, doc.Filename, doc.Content, opts); err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	return key, nil
}

// Open streams the document back. The caller must close Content.
func (s *DocumentStore) Open(ctx context.Context, key string) (*ports.StoredDocument, error) {
	b, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := b.OpenDownloadStream(key)
	if err != nil {
		return nil, notFound(err, "open document")
	}
	return storedDocument(key, stream.GetFile(), stream), nil
}

func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	b, err := s.open(ctx)
	if err != nil {
		return err
	}
	if err := b.Delete(key); err != nil {
		return notFound(err, "delete document")
	}
	return nil
}

// storedDocument reads the owner and content type back from the file
// metadata written by Put.
func storedDocument(key string, file *gridfs.File, content io.ReadCloser) *ports.StoredDocument {
	doc := &ports.StoredDocument{
		Key:      key,
		Filename: file.Name,
		Size:     file.Length,
		Content:  content,
	}
	if file.Metadata != nil {
		doc.OwnerID, _ = file.Metadata.Lookup(metaOwnerID).StringValueOK()
		doc.ContentType, _ = file.Metadata.Lookup(metaContentType).StringValueOK()
	}
	if doc.ContentType == "" {
		doc.ContentType = "application/octet-stream"
	}
	return doc
}

func notFound(err error, op string) error {
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return domain.ErrDocumentNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// open returns a bucket whose operations are bounded by ctx's deadline, or
// by defaultTimeout when ctx has none. Buckets are cheap and carry mutable
// deadlines, so each call gets its own.
func (s *DocumentStore) open(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultTimeout)
	}
	if err := b.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := b.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	return b, nil
}
