package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thebowwman/tripwatch/internals/domain"
)

func TestTripStoreCreateGet(t *testing.T) {
	s := NewTripStore()

	trip := &domain.Trip{ID: "t1", GroupID: "g1", Status: domain.StatusPlanned, CreatedAt: time.Now()}
	s.Create(trip)

	got, ok := s.Get("t1")
	assert.True(t, ok)
	assert.Equal(t, "g1", got.GroupID)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestTripStoreUpdate(t *testing.T) {
	s := NewTripStore()
	s.Create(&domain.Trip{ID: "t1", Status: domain.StatusPlanned})

	err := s.Update(&domain.Trip{ID: "t1", Status: domain.StatusActive})
	assert.NoError(t, err)
	got, _ := s.Get("t1")
	assert.Equal(t, domain.StatusActive, got.Status)

	err = s.Update(&domain.Trip{ID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTripStoreGetReturnsCopy(t *testing.T) {
	s := NewTripStore()
	s.Create(&domain.Trip{ID: "t1", Status: domain.StatusPlanned})

	got, _ := s.Get("t1")
	got.Status = domain.StatusCompleted

	again, _ := s.Get("t1")
	assert.Equal(t, domain.StatusPlanned, again.Status, "mutating a Get result must not touch the stored trip")
}

func TestTripStoreActivate(t *testing.T) {
	s := NewTripStore()
	s.Create(&domain.Trip{ID: "t1", Status: domain.StatusPlanned})

	s.Activate("t1")
	got, _ := s.Get("t1")
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.False(t, got.UpdatedAt.IsZero())

	// Already past planned: no-op.
	first := got.UpdatedAt
	s.Activate("t1")
	got, _ = s.Get("t1")
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, first, got.UpdatedAt)

	// Unknown trip: no-op, no panic.
	s.Activate("missing")
}

func TestTripStoreConcurrentActivateAndRead(t *testing.T) {
	s := NewTripStore()
	s.Create(&domain.Trip{ID: "t1", GroupID: "g1", Status: domain.StatusPlanned})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			s.Activate("t1")
		}()
		go func() {
			defer wg.Done()
			if trip, ok := s.Get("t1"); ok {
				_ = trip.Status
				_ = trip.UpdatedAt
			}
		}()
		go func() {
			defer wg.Done()
			for _, trip := range s.ListByGroup("g1") {
				_ = trip.Status
			}
		}()
	}
	wg.Wait()

	got, _ := s.Get("t1")
	assert.Equal(t, domain.StatusActive, got.Status)
}

func TestTripStoreListByGroup(t *testing.T) {
	s := NewTripStore()
	s.Create(&domain.Trip{ID: "t1", GroupID: "g1"})
	s.Create(&domain.Trip{ID: "t2", GroupID: "g1"})
	s.Create(&domain.Trip{ID: "t3", GroupID: "g2"})

	assert.Len(t, s.ListByGroup("g1"), 2)
	assert.Len(t, s.ListByGroup("g2"), 1)
	assert.Empty(t, s.ListByGroup("g3"))
}
