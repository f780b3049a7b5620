package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a recording id is not present in the store.
var ErrNotFound = errors.New("recording not found")

// Recording represents one captured audio clip.
// Recordings are immutable after creation; the store never modifies them.
type Recording struct {
	ID         string    `json:"id"`
	Data       []byte    `json:"-"` // WAV container bytes
	Duration   float64   `json:"duration_seconds"`
	SampleRate int       `json:"sample_rate"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stats represents store statistics for monitoring
type Stats struct {
	Recordings   int     `json:"recordings"`
	TotalBytes   int64   `json:"total_bytes"`
	TotalSeconds float64 `json:"total_seconds"`
}

// Store is an in-memory registry of captured recordings keyed by id.
// Ids are generated from a strictly increasing per-process counter and are
// never reused. The store has no eviction and no size cap; its lifetime
// equals the process lifetime.
type Store struct {
	recordings map[string]*Recording
	nextID     uint64

	mu sync.RWMutex
}

// New creates an empty recording store
func New() *Store {
	return &Store{
		recordings: make(map[string]*Recording),
		nextID:     1,
	}
}

// NextID reserves and returns a new unique recording id
func (s *Store) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("rec-%d", s.nextID)
	s.nextID++
	return id
}

// Put inserts a recording keyed by its id
func (s *Store) Put(rec *Recording) error {
	if rec == nil {
		return fmt.Errorf("recording cannot be nil")
	}

	if rec.ID == "" {
		return fmt.Errorf("recording id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.recordings[rec.ID]; exists {
		return fmt.Errorf("recording %s already exists", rec.ID)
	}

	s.recordings[rec.ID] = rec
	return nil
}

// Get returns the recording with the given id, or ErrNotFound
func (s *Store) Get(id string) (*Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.recordings[id]
	if !exists {
		return nil, fmt.Errorf("recording %s: %w", id, ErrNotFound)
	}

	return rec, nil
}

// Delete removes the recording with the given id.
// Deleting an absent id is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.recordings, id)
}

// List returns all stored recordings ordered by id creation time
func (s *Store) List() []*Recording {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*Recording, 0, len(s.recordings))
	for _, rec := range s.recordings {
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})

	return recs
}

// Count returns the number of stored recordings
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recordings)
}

// GetStats returns current store statistics
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Recordings: len(s.recordings)}
	for _, rec := range s.recordings {
		stats.TotalBytes += int64(len(rec.Data))
		stats.TotalSeconds += rec.Duration
	}

	return stats
}
