package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process RecordStore. It backs local development when no
// database is configured, and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record // collection -> records, insertion order
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]Record),
	}
}

// Compile-time check that MemoryStore implements RecordStore.
var _ RecordStore = (*MemoryStore)(nil)

// CreateRecord stores a copy of data with a generated id.
func (s *MemoryStore) CreateRecord(_ context.Context, collection string, data map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}

	rec := Record{
		ID:         uuid.NewString(),
		Collection: collection,
		Data:       copied,
		CreatedAt:  time.Now(),
	}
	s.records[collection] = append(s.records[collection], rec)

	return rec.ID, nil
}

// ListRecords returns the collection newest-first.
func (s *MemoryStore) ListRecords(_ context.Context, collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.records[collection]
	out := make([]Record, len(stored))
	for i, rec := range stored {
		out[len(stored)-1-i] = rec
	}

	return out, nil
}

// DeleteRecord removes a record by id; unknown ids are a no-op.
func (s *MemoryStore) DeleteRecord(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.records[collection]
	for i, rec := range stored {
		if rec.ID == id {
			s.records[collection] = append(stored[:i], stored[i+1:]...)
			break
		}
	}

	return nil
}
