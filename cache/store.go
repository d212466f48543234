package cache

import (
	"sort"
	"sync"
	"time"
)

// Key addresses one cached query result: an entity namespace plus a
// reference derived from the query (a canonical filter string or an id).
type Key struct {
	Namespace string
	Ref       string
}

type entry struct {
	value     any
	stale     bool
	updatedAt time.Time
}

// Store is an in-memory, session-scoped query cache. One instance is created
// per application session and handed to everything that reads or mutates
// cached data; it is dropped on logout.
//
// The mutex guards map integrity only. Per-key writes are last-write-wins:
// two in-flight mutations touching the same key settle in completion order,
// and the next invalidation-triggered refetch reconciles with the server.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[Key]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for k, stale or not.
func (s *Store) Get(k Key) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[k]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// IsStale reports whether k exists and has been invalidated since its last
// write. A missing key is not stale; it is absent.
func (s *Store) IsStale(k Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[k]
	return ok && e.stale
}

// Set writes a fresh value for k.
func (s *Store) Set(k Key, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[k] = entry{value: v, updatedAt: s.now()}
}

// Delete evicts k.
func (s *Store) Delete(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, k)
}

// Keys returns every key under the namespace, sorted by Ref so callers
// iterate deterministically.
func (s *Store) Keys(namespace string) []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []Key
	for k := range s.entries {
		if k.Namespace == namespace {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Ref < keys[j].Ref })
	return keys
}

// Invalidate marks every entry under the namespace stale. Stale entries keep
// serving their current value until a refetch overwrites them.
func (s *Store) Invalidate(namespace string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if k.Namespace == namespace {
			e.stale = true
			s.entries[k] = e
		}
	}
}

// Reset drops everything. Used at session teardown.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key]entry)
}
