// ABOUTME: Tests for the in-memory user store and id sequence
// ABOUTME: Covers the CRUD lifecycle, delete idempotency, and concurrent id issuance

package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CRUDLifecycle(t *testing.T) {
	s := New()

	created := s.Create("Alice", "alice@example.com")
	assert.Equal(t, uint64(1), created.ID)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "alice@example.com", created.Email)

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := s.Update(1, "Alicia", "alicia@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), updated.ID)
	assert.Equal(t, "Alicia", updated.Name)

	assert.True(t, s.Delete(1))

	_, err = s.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetMissing(t *testing.T) {
	s := New()
	_, err := s.Get(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateMissing(t *testing.T) {
	s := New()
	_, err := s.Update(42, "Nobody", "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteIdempotent(t *testing.T) {
	s := New()
	u := s.Create("Alice", "alice@example.com")

	assert.True(t, s.Delete(u.ID))
	assert.False(t, s.Delete(u.ID))
	assert.False(t, s.Delete(999))
}

func TestStore_IdsNeverReused(t *testing.T) {
	s := New()

	first := s.Create("Alice", "alice@example.com")
	require.True(t, s.Delete(first.ID))

	second := s.Create("Bob", "bob@example.com")
	assert.Greater(t, second.ID, first.ID)
}

func TestStore_ListSortedByID(t *testing.T) {
	s := New()
	s.Create("Charlie", "charlie@example.com")
	s.Create("Alice", "alice@example.com")
	s.Create("Bob", "bob@example.com")

	users := s.List()
	require.Len(t, users, 3)
	for i := 1; i < len(users); i++ {
		assert.Less(t, users[i-1].ID, users[i].ID)
	}
}

func TestStore_ListEmpty(t *testing.T) {
	s := New()
	assert.Empty(t, s.List())
}

func TestStore_SeedDemo(t *testing.T) {
	s := New()
	s.SeedDemo()

	users := s.List()
	require.Len(t, users, 2)
	assert.Equal(t, User{ID: 1, Name: "Alice", Email: "alice@example.com"}, users[0])
	assert.Equal(t, User{ID: 2, Name: "Bob", Email: "bob@example.com"}, users[1])
}

func TestStore_ConcurrentCreateDistinctIDs(t *testing.T) {
	s := New()

	// Issue some ids before the concurrent burst begins.
	before := s.Create("Warmup", "warmup@example.com").ID

	const n = 200
	ids := make(chan uint64, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- s.Create("User", "user@example.com").ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool, n)
	for id := range ids {
		assert.Greater(t, id, before)
		assert.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestStore_ConcurrentMixedOperations(t *testing.T) {
	s := New()
	seedIDs := make([]uint64, 0, 50)
	for i := 0; i < 50; i++ {
		seedIDs = append(seedIDs, s.Create("Seed", "seed@example.com").ID)
	}

	var wg sync.WaitGroup
	for _, id := range seedIDs {
		wg.Add(3)
		go func(id uint64) {
			defer wg.Done()
			_, _ = s.Update(id, "Renamed", "renamed@example.com")
		}(id)
		go func(id uint64) {
			defer wg.Done()
			s.Delete(id)
		}(id)
		go func(id uint64) {
			defer wg.Done()
			s.List()
		}(id)
	}
	wg.Wait()

	// Every seeded id is now gone regardless of interleaving.
	for _, id := range seedIDs {
		_, err := s.Get(id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestSequence_StrictlyIncreasing(t *testing.T) {
	var seq Sequence

	prev := seq.Next()
	assert.Equal(t, uint64(1), prev)
	for i := 0; i < 100; i++ {
		next := seq.Next()
		assert.Greater(t, next, prev)
		prev = next
	}
}
