package index

import (
	"sort"
	"sync"
	"time"

	apperr "github.com/bookmind/bookmind/internal/errors"
)

// Store is the in-memory vector store: a concurrency-safe map from entry
// key to Entry. All vectors share one dimensionality, fixed at creation.
//
// Reads proceed concurrently; writes are mutually exclusive and atomic from
// a reader's perspective. Replace swaps in a fully built entry set in one
// critical section, so searches during a rebuild always see a consistent
// point-in-time snapshot.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	dimensions int
}

// NewStore creates an empty store for vectors of the given dimensionality.
func NewStore(dimensions int) *Store {
	return &Store{
		entries:    make(map[string]Entry),
		dimensions: dimensions,
	}
}

// Dimensions returns the vector dimensionality the store accepts.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Upsert inserts or fully replaces the entry for entry.Key. The vector is
// copied so callers cannot mutate stored state after return.
func (s *Store) Upsert(entry Entry) error {
	if entry.Key == "" {
		return apperr.Newf(apperr.ErrCodeInvalidInput, "index entry key must not be empty")
	}
	if len(entry.Vector) != s.dimensions {
		return apperr.Newf(apperr.ErrCodeDimensionMismatch,
			"vector for %q has %d dimensions, store expects %d",
			entry.Key, len(entry.Vector), s.dimensions)
	}

	vec := make([]float32, len(entry.Vector))
	copy(vec, entry.Vector)
	entry.Vector = vec

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
	return nil
}

// Delete removes the entry for key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Get returns the entry for key.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// GetAll returns a snapshot of all entries sorted by key. The snapshot is
// a copy; concurrent writes cannot corrupt it mid-iteration.
func (s *Store) GetAll() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
}

// Size returns the number of entries.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Replace atomically publishes the contents of fresh as this store's entry
// set. Used by the reindex controller: the replacement set is built offline
// in a separate store, then swapped in with a single write-lock acquisition
// instead of holding the lock for the whole rebuild.
func (s *Store) Replace(fresh *Store) {
	fresh.mu.RLock()
	entries := fresh.entries
	fresh.mu.RUnlock()

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}
