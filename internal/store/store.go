// ABOUTME: In-memory user store with atomic id issuance
// ABOUTME: Defines User, Sequence and the concurrency-safe Store

package store

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
)

// ErrNotFound is returned when a requested user does not exist
var ErrNotFound = errors.New("not found")

// User represents a single directory entry. Identity is the ID field,
// which is minted by the store and never reused.
type User struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Sequence issues strictly increasing identifiers. The counter starts at
// zero, so the first issued id is 1. Safe for concurrent callers: no two
// callers ever observe the same value, and deleted ids are never reissued.
type Sequence struct {
	n atomic.Uint64
}

// Next returns a fresh identifier, strictly greater than any returned before.
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Store is a concurrency-safe map from id to User. All operations are
// individually atomic; callers need no external locking. Last writer wins
// on concurrent updates to the same id.
type Store struct {
	mu    sync.RWMutex
	users map[uint64]User
	seq   Sequence
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users: make(map[uint64]User),
	}
}

// List returns every currently-stored user sorted by id. The slice is a
// copy; mutating it does not affect the store.
func (s *Store) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the user with the given id, or ErrNotFound.
func (s *Store) Get(id uint64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Create mints a fresh id, stores the user and returns it. It always
// succeeds: the id is freshly issued, so no conflict is possible.
func (s *Store) Create(name, email string) User {
	u := User{ID: s.seq.Next(), Name: name, Email: email}

	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()

	return u
}

// Update atomically replaces the stored record for id, preserving the id.
// Returns ErrNotFound when the id is absent.
func (s *Store) Update(id uint64, name, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return User{}, ErrNotFound
	}
	u := User{ID: id, Name: name, Email: email}
	s.users[id] = u
	return u, nil
}

// Delete removes the user with the given id and reports whether a record
// was removed. Idempotent: the second call on the same id returns false.
func (s *Store) Delete(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

// SeedDemo populates the store with the demo directory entries. On a fresh
// store Alice gets id 1 and Bob id 2.
func (s *Store) SeedDemo() {
	s.Create("Alice", "alice@example.com")
	s.Create("Bob", "bob@example.com")
}
