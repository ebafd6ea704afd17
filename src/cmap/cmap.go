// Package cmap contains a sharded thread-safe map.
// Each shard has its own lock, so lookups for unrelated keys don't contend with one another.
package cmap

import (
	"fmt"
	"sync"
)

// DefaultShardCount is a reasonable default shard count.
const DefaultShardCount = 1 << 6

// A Map is the top-level map type. All functions on it are threadsafe.
// It should be constructed via New() rather than creating an instance directly.
type Map[K comparable, V any] struct {
	shards []shard[K, V]
	hasher func(K) uint64
	mask   uint64
}

// New creates a new Map using the given hasher to hash keys.
// The shard count must be a power of 2; it will panic if not.
func New[K comparable, V any](shardCount uint64, hasher func(K) uint64) *Map[K, V] {
	mask := shardCount - 1
	if shardCount == 0 || (shardCount&mask) != 0 {
		panic(fmt.Sprintf("Shard count %d is not a power of 2", shardCount))
	}
	m := &Map[K, V]{
		shards: make([]shard[K, V], shardCount),
		mask:   mask,
		hasher: hasher,
	}
	for i := range m.shards {
		m.shards[i].m = map[K]V{}
	}
	return m
}

func (m *Map[K, V]) shard(key K) *shard[K, V] {
	return &m.shards[m.hasher(key)&m.mask]
}

// Get returns the value for a key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	return m.shard(key).Get(key)
}

// Add inserts the value if the key isn't already present.
// It returns true if it was inserted.
func (m *Map[K, V]) Add(key K, val V) bool {
	return m.shard(key).Add(key, val)
}

type shard[K comparable, V any] struct {
	m map[K]V
	l sync.RWMutex
}

func (s *shard[K, V]) Get(key K) (V, bool) {
	s.l.RLock()
	defer s.l.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *shard[K, V]) Add(key K, val V) bool {
	s.l.Lock()
	defer s.l.Unlock()
	if _, present := s.m[key]; present {
		return false
	}
	s.m[key] = val
	return true
}
