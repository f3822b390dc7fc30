package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/jgoulah/callcharts/pkg/models"
)

type memKey struct {
	email string
	chart models.ChartID
}

// MemoryStore is an in-process Store. It backs the memory backend and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[memKey]models.SavedEntry
	nextID  int

	// GetErr and UpsertErr, when set, are returned instead of touching the map
	GetErr    error
	UpsertErr error

	Gets    int
	Upserts int
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[memKey]models.SavedEntry)}
}

// Get returns a copy of the stored entry
func (s *MemoryStore) Get(ctx context.Context, email string, chart models.ChartID) (*models.SavedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Gets++
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	entry, ok := s.entries[memKey{email, chart}]
	if !ok {
		return nil, nil
	}
	entry.Values = entry.Values.Clone()
	return &entry, nil
}

// Upsert replaces any entry stored under the same key
func (s *MemoryStore) Upsert(ctx context.Context, entry *models.SavedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Upserts++
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	key := memKey{entry.Email, entry.ChartID}
	stored := *entry
	stored.Values = entry.Values.Clone()
	if existing, ok := s.entries[key]; ok {
		stored.ID = existing.ID
	} else {
		s.nextID++
		stored.ID = s.nextID
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	stored.Published = false
	s.entries[key] = stored
	return nil
}

// Calls returns the number of Get and Upsert calls seen so far
func (s *MemoryStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Gets + s.Upserts
}
