package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/uranai/internal/domain/model"
)

// MemStore keeps records in a map. Intended for tests and local runs.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]string
	closed  bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]string)}
}

// GetOrInsert returns the existing record for date or stores a new one.
func (s *MemStore) GetOrInsert(ctx context.Context, date, code string) (model.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, false, err
	}
	if err := validate(date, code); err != nil {
		return model.Record{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Record{}, false, ErrClosed
	}
	if existing, ok := s.records[date]; ok {
		return model.Record{Date: date, Code: existing}, false, nil
	}
	s.records[date] = code
	return model.Record{Date: date, Code: code}, true, nil
}

// All returns every record ordered by date.
func (s *MemStore) All(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]model.Record, 0, len(s.records))
	for date, code := range s.records {
		out = append(out, model.Record{Date: date, Code: code})
	}
	// Fixed-width numeric keys sort lexically in date order.
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Count returns the number of stored records.
func (s *MemStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.records), nil
}

// Ping reports whether the store is open.
func (s *MemStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
