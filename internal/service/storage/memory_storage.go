package storage

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	dirty   bool
	version uint64
	updated time.Time
}

// MemoryStorage keeps objects in a map guarded by one RWMutex. Every Set bumps
// a per-store version so a flusher can tell whether a key changed while it
// was being saved.
type MemoryStorage[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[V]
	version uint64
	now     func() time.Time
}

var _ Storage[string, int] = (*MemoryStorage[string, int])(nil)

// NewMemoryStorage creates an empty store.
func NewMemoryStorage[K comparable, V any]() *MemoryStorage[K, V] {
	return &MemoryStorage[K, V]{
		entries: make(map[K]*entry[V]),
		now:     time.Now,
	}
}

// Set stores value under key and marks it dirty.
func (s *MemoryStorage[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	s.entries[key] = &entry[V]{value: value, dirty: true, version: s.version, updated: s.now()}
}

// Get returns the value stored under key.
func (s *MemoryStorage[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[key]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Delete drops key; a deleted key is no longer reported dirty.
func (s *MemoryStorage[K, V]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// GetAll returns a copy of every stored object.
func (s *MemoryStorage[K, V]) GetAll() map[K]V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[K]V, len(s.entries))
	for k, e := range s.entries {
		out[k] = e.value
	}
	return out
}

// GetAllValues returns every stored value in no particular order.
func (s *MemoryStorage[K, V]) GetAllValues() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]V, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.value)
	}
	return out
}

// GetDirty returns the objects written since their flag was last cleared.
func (s *MemoryStorage[K, V]) GetDirty() map[K]V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[K]V)
	for k, e := range s.entries {
		if e.dirty {
			out[k] = e.value
		}
	}
	return out
}

// ClearDirty unconditionally clears the flags of keys.
func (s *MemoryStorage[K, V]) ClearDirty(keys []K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		if e, ok := s.entries[k]; ok {
			e.dirty = false
		}
	}
}

// GetDirtyVersions is GetDirty with the version each value was read at.
func (s *MemoryStorage[K, V]) GetDirtyVersions() map[K]Versioned[V] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[K]Versioned[V])
	for k, e := range s.entries {
		if e.dirty {
			out[k] = Versioned[V]{Value: e.value, Version: e.version}
		}
	}
	return out
}

// ClearDirtyVersions clears the flag of each key still at the given version.
// Keys rewritten in the meantime stay dirty.
func (s *MemoryStorage[K, V]) ClearDirtyVersions(seen map[K]uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range seen {
		if e, ok := s.entries[k]; ok && e.version == v {
			e.dirty = false
		}
	}
}

// LastUpdate returns when key was last set.
func (s *MemoryStorage[K, V]) LastUpdate(key K) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[key]; ok {
		return e.updated, true
	}
	return time.Time{}, false
}

// ForEach calls fn on a snapshot of the store until fn returns false.
func (s *MemoryStorage[K, V]) ForEach(fn func(key K, value V) bool) {
	for k, v := range s.GetAll() {
		if !fn(k, v) {
			return
		}
	}
}

// Count returns the number of stored objects.
func (s *MemoryStorage[K, V]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
