package storage

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// ShardedMemoryStorage spreads keys over independently locked shards so
// concurrent writers rarely contend.
type ShardedMemoryStorage[K comparable, V any] struct {
	shards     []*MemoryStorage[K, V]
	shardMask  int
	keyToShard func(K) int
}

var _ Storage[string, int] = (*ShardedMemoryStorage[string, int])(nil)

// NewShardedMemoryStorage creates a sharded storage. The shard count is
// rounded up to a power of two; keyToShard may be nil to hash the key.
func NewShardedMemoryStorage[K comparable, V any](shardCount int, keyToShard func(K) int) *ShardedMemoryStorage[K, V] {
	n := 1
	for n < shardCount {
		n *= 2
	}

	shards := make([]*MemoryStorage[K, V], n)
	for i := range shards {
		shards[i] = NewMemoryStorage[K, V]()
	}
	if keyToShard == nil {
		keyToShard = hashKey[K]
	}
	return &ShardedMemoryStorage[K, V]{
		shards:     shards,
		shardMask:  n - 1,
		keyToShard: keyToShard,
	}
}

func hashKey[K comparable](key K) int {
	h := fnv.New32a()
	switch k := any(key).(type) {
	case string:
		h.Write([]byte(k))
	default:
		fmt.Fprintf(h, "%v", key)
	}
	return int(h.Sum32())
}

// ShardCount returns the number of shards.
func (s *ShardedMemoryStorage[K, V]) ShardCount() int {
	return len(s.shards)
}

func (s *ShardedMemoryStorage[K, V]) shard(key K) *MemoryStorage[K, V] {
	return s.shards[s.keyToShard(key)&s.shardMask]
}

// Set adds or updates an object and marks it dirty
func (s *ShardedMemoryStorage[K, V]) Set(key K, value V) { s.shard(key).Set(key, value) }

// Get returns an object by key
func (s *ShardedMemoryStorage[K, V]) Get(key K) (V, bool) { return s.shard(key).Get(key) }

// Delete removes an object by key
func (s *ShardedMemoryStorage[K, V]) Delete(key K) bool { return s.shard(key).Delete(key) }

// LastUpdate returns when key was last set
func (s *ShardedMemoryStorage[K, V]) LastUpdate(key K) (time.Time, bool) {
	return s.shard(key).LastUpdate(key)
}

// GetAll returns all objects from all shards
func (s *ShardedMemoryStorage[K, V]) GetAll() map[K]V {
	result := make(map[K]V)
	for _, shard := range s.shards {
		for k, v := range shard.GetAll() {
			result[k] = v
		}
	}
	return result
}

// GetAllValues returns all values as a slice
func (s *ShardedMemoryStorage[K, V]) GetAllValues() []V {
	result := make([]V, 0, s.Count())
	for _, shard := range s.shards {
		result = append(result, shard.GetAllValues()...)
	}
	return result
}

// GetDirty returns the dirty objects of every shard
func (s *ShardedMemoryStorage[K, V]) GetDirty() map[K]V {
	result := make(map[K]V)
	for _, shard := range s.shards {
		for k, v := range shard.GetDirty() {
			result[k] = v
		}
	}
	return result
}

// ClearDirty clears dirty flags for provided keys
func (s *ShardedMemoryStorage[K, V]) ClearDirty(keys []K) {
	byShard := make(map[int][]K)
	for _, k := range keys {
		i := s.keyToShard(k) & s.shardMask
		byShard[i] = append(byShard[i], k)
	}
	for i, ks := range byShard {
		s.shards[i].ClearDirty(ks)
	}
}

// GetDirtyVersions returns the dirty objects of every shard with their versions.
// Versions are per shard; a key always maps to the same shard.
func (s *ShardedMemoryStorage[K, V]) GetDirtyVersions() map[K]Versioned[V] {
	result := make(map[K]Versioned[V])
	for _, shard := range s.shards {
		for k, v := range shard.GetDirtyVersions() {
			result[k] = v
		}
	}
	return result
}

// ClearDirtyVersions clears the keys still at the version seen
func (s *ShardedMemoryStorage[K, V]) ClearDirtyVersions(seen map[K]uint64) {
	byShard := make(map[int]map[K]uint64)
	for k, v := range seen {
		i := s.keyToShard(k) & s.shardMask
		if byShard[i] == nil {
			byShard[i] = make(map[K]uint64)
		}
		byShard[i][k] = v
	}
	for i, ks := range byShard {
		s.shards[i].ClearDirtyVersions(ks)
	}
}

// ForEach executes a function for each object, shard by shard; returning
// false stops the iteration
func (s *ShardedMemoryStorage[K, V]) ForEach(fn func(key K, value V) bool) {
	stopped := false
	for _, shard := range s.shards {
		shard.ForEach(func(k K, v V) bool {
			if !fn(k, v) {
				stopped = true
			}
			return !stopped
		})
		if stopped {
			return
		}
	}
}

// ForEachParallel runs fn over every shard concurrently
func (s *ShardedMemoryStorage[K, V]) ForEachParallel(fn func(key K, value V)) {
	var wg sync.WaitGroup
	wg.Add(len(s.shards))
	for _, shard := range s.shards {
		shard := shard
		go func() {
			defer wg.Done()
			shard.ForEach(func(k K, v V) bool {
				fn(k, v)
				return true
			})
		}()
	}
	wg.Wait()
}

// Count returns total number of objects
func (s *ShardedMemoryStorage[K, V]) Count() int {
	count := 0
	for _, shard := range s.shards {
		count += shard.Count()
	}
	return count
}
