package dedup

import (
	"fmt"
	"sync"
	"time"
)

// DefaultWindow is how long two equal fingerprints count as the same
// underlying transaction.
const DefaultWindow = 5 * time.Minute

// Record tracks a fingerprint across multiple observations.
type Record struct {
	DetectionID string    `json:"detectionId"`
	FirstSeen   time.Time `json:"firstSeen"`
	LastSeen    time.Time `json:"lastSeen"`
	Count       int       `json:"count"`
}

// Store is a keyed recent-fingerprint cache with expiry. It serializes
// concurrent access internally, so callers get at-most-one-duplicate
// semantics without external locking.
type Store struct {
	mu      sync.Mutex
	window  time.Duration
	records map[string]*Record
}

// NewStore creates an empty store. A non-positive window falls back to
// DefaultWindow.
func NewStore(window time.Duration) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		window:  window,
		records: make(map[string]*Record),
	}
}

// Window returns the configured duplicate window.
func (s *Store) Window() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// SetWindow replaces the duplicate window. A non-positive window falls back
// to DefaultWindow. Existing records are judged against the new window on
// the next Observe, Seen, or Sweep.
func (s *Store) SetWindow(window time.Duration) {
	if window <= 0 {
		window = DefaultWindow
	}
	s.mu.Lock()
	s.window = window
	s.mu.Unlock()
}

// Observe records a fingerprint observation and reports whether it is a
// duplicate: an equal fingerprint was already seen within the window of the
// given detection time. Check and record happen under one lock, so two
// concurrent observations of the same fingerprint yield exactly one
// non-duplicate.
func (s *Store) Observe(fingerprint, detectionID string, at time.Time) (bool, error) {
	if fingerprint == "" {
		return false, fmt.Errorf("fingerprint cannot be empty")
	}
	if detectionID == "" {
		return false, fmt.Errorf("detection ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if record, exists := s.records[fingerprint]; exists && within(at, record.LastSeen, s.window) {
		record.LastSeen = at
		record.Count++
		return true, nil
	}

	s.records[fingerprint] = &Record{
		DetectionID: detectionID,
		FirstSeen:   at,
		LastSeen:    at,
		Count:       1,
	}
	return false, nil
}

// Seen reports whether a fingerprint was observed within the window of the
// given time, without recording anything.
func (s *Store) Seen(fingerprint string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[fingerprint]
	return exists && within(at, record.LastSeen, s.window)
}

// Sweep removes records whose last observation is older than the window
// relative to now, and returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for fp, record := range s.records {
		if now.Sub(record.LastSeen) > s.window {
			delete(s.records, fp)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked fingerprints.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// within reports whether two detection times fall inside the window,
// regardless of their order.
func within(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}
