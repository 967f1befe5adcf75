package storage

import "time"

// Versioned is a stored value together with the write version it was read at.
type Versioned[V any] struct {
	Value   V
	Version uint64
}

// Storage defines interface for any object storage with dirty tracking
type Storage[K comparable, V any] interface {
	Set(key K, value V)
	Get(key K) (V, bool)
	Delete(key K) bool
	GetAll() map[K]V
	GetAllValues() []V
	GetDirty() map[K]V
	ClearDirty(keys []K)

	// GetDirtyVersions snapshots the dirty values with their versions;
	// ClearDirtyVersions clears only the keys not written since.
	GetDirtyVersions() map[K]Versioned[V]
	ClearDirtyVersions(seen map[K]uint64)

	LastUpdate(key K) (time.Time, bool)
	ForEach(fn func(key K, value V) bool)
	Count() int
}
