package db

import (
	"context"
	"sync"

	"votetopics/pkg/domain"
)

// MemoryStore keeps topics in process. Used for dry runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	topics []domain.Topic
}

// NewMemoryStore creates an empty store, optionally seeded.
func NewMemoryStore(seed ...domain.Topic) *MemoryStore {
	return &MemoryStore{topics: append([]domain.Topic(nil), seed...)}
}

// FindByTitle reports whether a topic with this exact title is stored.
func (s *MemoryStore) FindByTitle(_ context.Context, title string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.topics {
		if t.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// DeleteStale removes matching topics.
func (s *MemoryStore) DeleteStale(_ context.Context, sig StaleSignature) (int64, error) {
	if sig.Empty() {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.topics[:0]
	var removed int64
	for _, t := range s.topics {
		if sig.Matches(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.topics = kept
	return removed, nil
}

// InsertBatch appends topics.
func (s *MemoryStore) InsertBatch(_ context.Context, topics []domain.Topic) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, topics...)
	return len(topics), nil
}

// CopyBatch appends topics as given.
func (s *MemoryStore) CopyBatch(ctx context.Context, topics []domain.Topic) (int, error) {
	return s.InsertBatch(ctx, topics)
}

// Topics returns a copy of the stored topics.
func (s *MemoryStore) Topics() []domain.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Topic(nil), s.topics...)
}

// ListTopics returns a copy of the stored topics.
func (s *MemoryStore) ListTopics(context.Context) ([]domain.Topic, error) {
	return s.Topics(), nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error { return nil }
