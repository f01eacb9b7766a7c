package db

import (
	"context"
	"database/sql"
	"errors"

	"votetopics/pkg/domain"
)

// ErrNotConnected is returned when a store is used before Connect succeeded.
var ErrNotConnected = errors.New("store not connected")

// TopicStore is what the ingestion pipeline needs from storage.
type TopicStore interface {
	// FindByTitle reports whether a topic with exactly this title exists.
	FindByTitle(ctx context.Context, title string) (bool, error)
	// DeleteStale removes topics matching sig and returns how many went.
	DeleteStale(ctx context.Context, sig StaleSignature) (int64, error)
	// InsertBatch writes all topics in one operation and returns how many were written.
	InsertBatch(ctx context.Context, topics []domain.Topic) (int, error)
}

// TopicLister reads every stored topic. Used by replication, not by ingestion.
type TopicLister interface {
	ListTopics(ctx context.Context) ([]domain.Topic, error)
}

// TopicCopier writes topics as they were read from another backend,
// including total_votes. Used by replication.
type TopicCopier interface {
	FindByTitle(ctx context.Context, title string) (bool, error)
	CopyBatch(ctx context.Context, topics []domain.Topic) (int, error)
}

// Store is a TopicStore with a connection lifecycle.
type Store interface {
	TopicStore
	TopicLister
	TopicCopier
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
type DBProvider interface {
	DB() *sql.DB
}
