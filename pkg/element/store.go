package element

import (
	"fmt"
	"sync"
	"time"
)

// Store holds the element descriptors for one engine invocation.
//
// Concurrently running test cases may share one store: the only
// mutation after load is the last-known-good timestamp, which is
// monotonic last-write-wins and therefore commutative. A concurrent
// reader at worst ranks on a slightly stale timestamp, which affects
// candidate ordering, never correctness.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*Descriptor
	order []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*Descriptor)}
}

// Add registers a descriptor. Duplicate ids are rejected.
func (s *Store) Add(d Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("element: descriptor with empty id")
	}
	if !d.Role.Valid() {
		return fmt.Errorf("element: descriptor %q has invalid role %q", d.ID, d.Role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[d.ID]; ok {
		return fmt.Errorf("element: duplicate descriptor id %q", d.ID)
	}
	cp := d.clone()
	s.byID[d.ID] = &cp
	s.order = append(s.order, d.ID)
	return nil
}

// Snapshot returns a deep copy of the descriptor with the given id.
// Callers rank and probe the copy without holding the store lock.
func (s *Store) Snapshot(id string) (Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return d.clone(), true
}

// MarkGood records a successful resolution of the given candidate.
// The timestamp only moves forward, so concurrent updates commute.
func (s *Store) MarkGood(id, locator string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	if !ok {
		return
	}
	c := d.Candidate(locator)
	if c == nil {
		return
	}
	if t.After(c.LastGood) {
		c.LastGood = t
	}
}

// IDs returns the descriptor ids in registration order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of descriptors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Has reports whether a descriptor with the given id exists.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}
