package store

import (
	"errors"
	"sync"
	"time"

	"github.com/thebowwman/tripwatch/internals/domain"
)

var ErrNotFound = errors.New("trip not found")

type TripStore struct {
	mu sync.RWMutex
	m  map[string]*domain.Trip
}

func NewTripStore() *TripStore { return &TripStore{m: make(map[string]*domain.Trip)} }

var Trips = NewTripStore()

func (s *TripStore) Create(t *domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[t.ID] = t
}

// Get returns a copy of the trip. Readers never share the stored struct, so
// they cannot observe a half-written status transition.
func (s *TripStore) Get(id string) (*domain.Trip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.m[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

func (s *TripStore) Update(t *domain.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[t.ID]; !ok {
		return ErrNotFound
	}
	s.m[t.ID] = t
	return nil
}

// Activate flips a planned trip to active. The mutation happens under the
// store lock; it is a no-op for trips already past planned, so concurrent
// first pings settle on a single transition.
func (s *TripStore) Activate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.m[id]; ok && t.Status == domain.StatusPlanned {
		t.Status = domain.StatusActive
		t.UpdatedAt = time.Now()
	}
}

func (s *TripStore) ListByGroup(groupID string) []*domain.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Trip
	for _, t := range s.m {
		if t.GroupID == groupID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}
