package cache

import "sort"

// SnapshotEntry is one captured cache entry: the key, the value it held and
// whether it was stale at capture time.
type SnapshotEntry struct {
	Key   Key
	Value any
	Stale bool
}

// Snapshot is a verbatim copy of every entry under one namespace, taken
// immediately before an optimistic mutation. It lives for the duration of one
// mutation: discarded on success, replayed on failure.
type Snapshot struct {
	Namespace string
	Entries   []SnapshotEntry
}

// Capture copies the current state of the namespace out of the store in one
// atomic read.
func Capture(s *Store, namespace string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Namespace: namespace}
	var keys []Key
	for k := range s.entries {
		if k.Namespace == namespace {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Ref < keys[j].Ref })
	for _, k := range keys {
		e := s.entries[k]
		snap.Entries = append(snap.Entries, SnapshotEntry{Key: k, Value: e.value, Stale: e.stale})
	}
	return snap
}

// Restore overwrites the namespace with the captured state: every captured
// entry comes back exactly as it was, and entries created after the capture
// are evicted.
func (snap Snapshot) Restore(s *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if k.Namespace == snap.Namespace {
			delete(s.entries, k)
		}
	}
	for _, se := range snap.Entries {
		s.entries[se.Key] = entry{value: se.Value, stale: se.Stale, updatedAt: s.now()}
	}
}
