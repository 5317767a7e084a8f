package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config holds the document store connection settings.
type Config struct {
	URI      string
	Database string
	// Bucket is the GridFS bucket whose owner index Connect ensures.
	// Defaults to DefaultBucket.
	Bucket  string
	AppName string
	Timeout time.Duration
}

// Connect opens the client, pings it and makes sure the documents bucket is
// indexed by owner. It returns the client and the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := EnsureDocumentIndexes(connectCtx, db, cfg.Bucket); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, err
	}
	return client, db, nil
}

// EnsureDocumentIndexes creates the owner index on the bucket's files
// collection. Creating an existing index is a no-op.
func EnsureDocumentIndexes(ctx context.Context, db *mongo.Database, bucket string) error {
	coll := filesCollection(bucket)
	if _, err := db.Collection(coll).Indexes().CreateMany(ctx, documentIndexes()); err != nil {
		return fmt.Errorf("mongo index %s: %w", coll, err)
	}
	return nil
}

func filesCollection(bucket string) string {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return bucket + ".files"
}

func documentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys:    bson.D{{Key: "metadata." + metaOwnerID, Value: 1}},
		Options: options.Index().SetName("metadata_owner_id"),
	}}
}
