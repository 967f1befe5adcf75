package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageDirtyTracking(t *testing.T) {
	s := NewMemoryStorage[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	assert.Equal(t, map[string]int{"a": 1, "b": 2}, s.GetDirty())

	s.ClearDirty([]string{"a"})
	assert.Equal(t, map[string]int{"b": 2}, s.GetDirty())

	s.Set("a", 3)
	assert.Equal(t, map[string]int{"a": 3, "b": 2}, s.GetDirty())

	require.True(t, s.Delete("b"))
	assert.False(t, s.Delete("b"))
	assert.Equal(t, map[string]int{"a": 3}, s.GetDirty())
	assert.Equal(t, 1, s.Count())
}

func TestMemoryStorageLastUpdate(t *testing.T) {
	s := NewMemoryStorage[string, int]()
	fixed := time.Date(2024, 10, 3, 8, 15, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Set("a", 1)
	got, ok := s.LastUpdate("a")
	require.True(t, ok)
	assert.Equal(t, fixed, got)

	_, ok = s.LastUpdate("missing")
	assert.False(t, ok)
}

func TestMemoryStorageForEachStops(t *testing.T) {
	s := NewMemoryStorage[int, int]()
	for i := 0; i < 10; i++ {
		s.Set(i, i)
	}
	visited := 0
	s.ForEach(func(k, v int) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)
	assert.Len(t, s.GetAllValues(), 10)
}

func TestMemoryStorageConcurrent(t *testing.T) {
	s := NewMemoryStorage[int, int]()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Set(w*100+i, i)
				s.Get(i)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 800, s.Count())
}

func TestMemoryStorageClearDirtyVersions(t *testing.T) {
	s := NewMemoryStorage[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	snap := s.GetDirtyVersions()
	require.Len(t, snap, 2)
	assert.Equal(t, 1, snap["a"].Value)

	// "a" is rewritten while its old value is being saved
	s.Set("a", 10)

	seen := map[string]uint64{}
	for k, v := range snap {
		seen[k] = v.Version
	}
	s.ClearDirtyVersions(seen)

	assert.Equal(t, map[string]int{"a": 10}, s.GetDirty())

	s.ClearDirtyVersions(map[string]uint64{"missing": 1})
	assert.Len(t, s.GetDirty(), 1)
}
