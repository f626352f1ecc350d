// Package typed wraps pkg/table's raw byte-buffer Table in a generic,
// concurrency-safe convenience API, the same role the teacher's generic
// Cache[K,V] plays over its own shard package: marshal typed keys/values
// into the fixed-width buffers the core requires, add a mutex (the core is
// explicitly single-writer, spec §5) and singleflight-based load
// de-duplication (spec's GetOrLoad equivalent) on top.
package typed

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kvtab/buckettable/pkg/table"
)

// Cache is a generic, mutex-guarded wrapper around a pkg/table.Table. K and
// V must be fixed-width (no pointers, slices, strings, or maps) since their
// raw memory is copied directly into the table's buffers.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	tbl   *table.Table
	group singleflight.Group
}

// New constructs a Cache[K,V]. keySize is unsafe.Sizeof(K); valueSize is
// unsafe.Sizeof(V) — both derived automatically, so K and V must already
// satisfy pkg/table's size constraints (keySize a multiple of 4 in [4,64],
// valueSize in [0,1048576]) or New returns the same construction error
// pkg/table.New would.
func New[K comparable, V any](opts ...table.Option) (*Cache[K, V], error) {
	tbl, err := table.New(sizeOf[K](), sizeOf[V](), opts...)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{tbl: tbl}, nil
}

// Get returns the value stored for key, if present. It takes the write lock
// because a hit sets the slot's CLOCK recently-used bit in the table.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	out := make([]byte, sizeOf[V]())
	if table.Hit != c.tbl.Get(viewBytes(&key), 0, out, 0) {
		return zero, false
	}
	return fromBytes[V](out), true
}

// Exist reports whether key is present, without copying its value.
func (c *Cache[K, V]) Exist(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return table.Hit == c.tbl.Exist(viewBytes(&key), 0)
}

// Set inserts or updates key/value under the table's auto-growing dict
// policy. Returns true if key was newly inserted, false if it already
// existed and was updated.
func (c *Cache[K, V]) Set(key K, value V) (inserted bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.tbl.Set(viewBytes(&key), 0, viewBytes(&value), 0)
	if err != nil {
		return false, err
	}
	return r == table.Inserted, nil
}

// Unset removes key if present, reporting whether it was found.
func (c *Cache[K, V]) Unset(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return table.Hit == c.tbl.Unset(viewBytes(&key), 0)
}

// CacheSet inserts or updates key/value under the table's bounded
// CLOCK-eviction policy. Returns true if a live element was evicted to make
// room.
func (c *Cache[K, V]) CacheSet(key K, value V) (evicted bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.tbl.Cache(viewBytes(&key), 0, viewBytes(&value), 0)
	if err != nil {
		return false, err
	}
	return r == table.CacheInsertedEvicted, nil
}

// GetOrLoad returns the cached value for key, or calls fn to produce it on a
// miss. Concurrent GetOrLoad calls for the same key de-duplicate via
// singleflight: fn runs at most once per outstanding miss, and every waiter
// receives its result. fn's result, on success, is stored with CacheSet if
// the table is already in cache mode, or Set otherwise.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, fn LoaderFunc[K, V]) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	groupKey := viewBytes(&key)
	res, err, _ := c.group.Do(string(groupKey), func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fn(ctx, key)
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		mode := c.tbl.Mode()
		c.mu.Unlock()

		if mode == table.ModeCache {
			if _, err := c.CacheSet(key, v); err != nil {
				return v, err
			}
		} else {
			if _, err := c.Set(key, v); err != nil {
				return v, err
			}
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Length returns the number of live elements in the underlying table.
func (c *Cache[K, V]) Length() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tbl.Length()
}

// Capacity returns the underlying table's total slot capacity.
func (c *Cache[K, V]) Capacity() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tbl.Capacity()
}

// Snapshot returns the underlying table's occupancy snapshot, for a debug
// endpoint or periodic metrics refresh.
func (c *Cache[K, V]) Snapshot() table.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tbl.Snapshot()
}
