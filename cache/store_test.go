package cache

import (
	"reflect"
	"testing"
)

func key(ref string) Key {
	return Key{Namespace: "transactions", Ref: ref}
}

func TestSetGetDelete(t *testing.T) {
	s := NewStore()

	s.Set(key("list:a"), []int{1, 2})
	v, ok := s.Get(key("list:a"))
	if !ok {
		t.Fatal("Expected cached value")
	}
	if !reflect.DeepEqual(v, []int{1, 2}) {
		t.Errorf("Expected [1 2], got %v", v)
	}

	s.Delete(key("list:a"))
	if _, ok := s.Get(key("list:a")); ok {
		t.Error("Expected value to be evicted")
	}
}

func TestInvalidateMarksNamespaceStale(t *testing.T) {
	s := NewStore()
	s.Set(key("list:a"), 1)
	s.Set(key("detail:1"), 2)
	s.Set(Key{Namespace: "budgetgoals", Ref: "list"}, 3)

	s.Invalidate("transactions")

	if !s.IsStale(key("list:a")) || !s.IsStale(key("detail:1")) {
		t.Error("Expected transactions entries to be stale")
	}
	if s.IsStale(Key{Namespace: "budgetgoals", Ref: "list"}) {
		t.Error("Expected other namespaces to stay fresh")
	}

	// Stale entries keep serving until overwritten.
	if v, ok := s.Get(key("list:a")); !ok || v != 1 {
		t.Errorf("Expected stale entry to still serve its value, got %v (ok=%v)", v, ok)
	}

	// A fresh write clears staleness.
	s.Set(key("list:a"), 10)
	if s.IsStale(key("list:a")) {
		t.Error("Expected rewrite to clear staleness")
	}
}

func TestKeysSortedWithinNamespace(t *testing.T) {
	s := NewStore()
	s.Set(key("list:b"), 1)
	s.Set(key("list:a"), 2)
	s.Set(Key{Namespace: "users", Ref: "me"}, 3)

	got := s.Keys("transactions")
	want := []Key{key("list:a"), key("list:b")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := NewStore()
	s.Set(key("list:a"), []string{"A", "B"})
	s.Set(key("detail:2"), "B")
	s.Invalidate("transactions")
	s.Set(key("detail:2"), "B") // fresh again

	snap := Capture(s, "transactions")

	// Mutate optimistically: rewrite, evict, and add a new entry.
	s.Set(key("list:a"), []string{"A"})
	s.Delete(key("detail:2"))
	s.Set(key("detail:3"), "C")

	snap.Restore(s)

	if v, _ := s.Get(key("list:a")); !reflect.DeepEqual(v, []string{"A", "B"}) {
		t.Errorf("Expected list restored verbatim, got %v", v)
	}
	if v, ok := s.Get(key("detail:2")); !ok || v != "B" {
		t.Errorf("Expected evicted entry restored, got %v (ok=%v)", v, ok)
	}
	if _, ok := s.Get(key("detail:3")); ok {
		t.Error("Expected entry created after capture to be evicted on restore")
	}
	if !s.IsStale(key("list:a")) {
		t.Error("Expected staleness restored with the entry")
	}
	if s.IsStale(key("detail:2")) {
		t.Error("Expected fresh entry to be restored fresh")
	}
}

func TestReset(t *testing.T) {
	s := NewStore()
	s.Set(key("list:a"), 1)
	s.Reset()
	if _, ok := s.Get(key("list:a")); ok {
		t.Error("Expected store to be empty after reset")
	}
}
