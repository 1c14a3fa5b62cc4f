package summary

import (
	"sync"
	"time"
)

// Store holds the most recent aggregation result behind a generation
// token. Re-triggering the aggregation (date change) supersedes any
// in-flight run: a slower, stale run's Complete call is rejected so it
// can never overwrite the result of a newer request. Thread-safe.
type Store struct {
	mu   sync.RWMutex
	gen  uint64
	date time.Time
	rows []Row
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Begin registers a new aggregation for the given date and returns its
// generation token. Any previously issued token becomes stale.
func (s *Store) Begin(date time.Time) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.date = date
	return s.gen
}

// Complete stores the rows for the given generation. It returns false,
// leaving the store untouched, when a newer aggregation has begun since
// the token was issued.
func (s *Store) Complete(gen uint64, rows []Row) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.rows = rows
	return true
}

// Latest returns the date and rows of the most recently completed
// aggregation. ok is false until the first Complete.
func (s *Store) Latest() (date time.Time, rows []Row, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rows == nil {
		return time.Time{}, nil, false
	}
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return s.date, out, true
}
