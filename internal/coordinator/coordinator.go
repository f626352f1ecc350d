// Package coordinator implements the Coordinator component of the spec:
// the layer above shardtable.Shard that hashes a key once, routes it to one
// of shardCount shards by the high bytes of (H1,H2), and owns the
// cross-shard state a single shard cannot: total length and capacity, the
// dict/cache mode lock, and the two-step resize-retry protocol on a failed
// set.
//
// Coordinator itself never touches a bucket; every mutation happens inside
// the shard it routes to. It is, like shardtable.Shard, single-writer: the
// caller (pkg/table) serializes access.
package coordinator

import (
	"errors"

	"github.com/kvtab/buckettable/internal/shardtable"
	"github.com/kvtab/buckettable/internal/tabhash"
)

// Mode tracks which of the two mutually exclusive operating modes a
// Coordinator has locked into, per spec §4.4.
type Mode int

const (
	ModeUnset Mode = iota
	ModeDict
	ModeCache
)

// BucketsMax and BufferMax mirror the resource limits in spec §5; a resize
// target that would exceed either is never attempted.
const (
	BucketsMax = 65536
	BufferMax  = 1<<31 - 1
)

var (
	// ErrModeConflict is returned when set and cache are both called on the
	// same Coordinator after one has locked its mode.
	ErrModeConflict = errors.New("cache() and set() methods are mutually exclusive")

	// ErrSetExhausted is returned when a set could not be absorbed even
	// after two resize attempts.
	ErrSetExhausted = errors.New("set() failed despite multiple resize attempts")

	// ErrCapacityExceeded is returned when absorbing a set would require a
	// resize past BucketsMax or BufferMax.
	ErrCapacityExceeded = errors.New("maximum capacity exceeded")
)

// Coordinator fans out to shardCount shards and tracks the state that spans
// them all.
type Coordinator struct {
	shards []*shardtable.Shard
	mask   uint32
	tables *tabhash.Tables

	mode   Mode
	length int
}

// New wires up a Coordinator over an already-constructed slice of shards.
// len(shards) must be a power of two; building the shards themselves
// (bucket counts, key/value sizes, buffer pool) is pkg/table's job.
func New(shards []*shardtable.Shard, tables *tabhash.Tables) *Coordinator {
	return &Coordinator{
		shards: shards,
		mask:   uint32(len(shards) - 1),
		tables: tables,
	}
}

// ShardCount returns the number of shards the coordinator fans out over.
func (c *Coordinator) ShardCount() int { return len(c.shards) }

// ShardFor reports which shard index key would route to. Intended for
// metrics/debug callers willing to pay for a second hash of key; the hot
// Get/Set/etc. paths below never call it.
func (c *Coordinator) ShardFor(key []byte) int {
	_, h1, h2 := c.route(key)
	return int((((h1 >> 24) << 8) | (h2 >> 24)) & c.mask)
}

// ShardSnapshot describes one shard's occupancy for debug/metrics use.
type ShardSnapshot struct {
	BucketCount int
	Capacity    int
	Occupied    int
	SizeBytes   int64
}

// Snapshots returns a per-shard occupancy snapshot, in shard-index order.
// O(total buckets); intended for debug endpoints and periodic metrics
// gauges, never the hot path.
func (c *Coordinator) Snapshots() []ShardSnapshot {
	out := make([]ShardSnapshot, len(c.shards))
	for i, s := range c.shards {
		out[i] = ShardSnapshot{
			BucketCount: s.BucketCount(),
			Capacity:    s.Capacity(),
			Occupied:    s.OccupiedCount(),
			SizeBytes:   s.SizeBytes(),
		}
	}
	return out
}

// Mode reports the coordinator's locked operating mode (ModeUnset before
// the first set or cache call).
func (c *Coordinator) Mode() Mode { return c.mode }

// Length returns the total number of live elements across every shard.
func (c *Coordinator) Length() int { return c.length }

// Capacity returns the sum, across every shard, of bucketCount*8.
func (c *Coordinator) Capacity() int {
	total := 0
	for _, s := range c.shards {
		total += s.Capacity()
	}
	return total
}

// SizeBytes returns the total number of buffer bytes allocated across every
// shard.
func (c *Coordinator) SizeBytes() int64 {
	var total int64
	for _, s := range c.shards {
		total += s.SizeBytes()
	}
	return total
}

// Load returns length/capacity, or 0 if capacity is 0.
func (c *Coordinator) Load() float64 {
	capacity := c.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(c.length) / float64(capacity)
}

// route hashes key once and picks the owning shard, per spec §4.4: the
// shard index uses the high byte of each hash word so that shard selection
// is orthogonal to the low-bit bucket selection each shard performs on its
// own.
func (c *Coordinator) route(key []byte) (s *shardtable.Shard, h1, h2 uint32) {
	h1, h2 = c.tables.Hash(key)
	idx := (((h1 >> 24) << 8) | (h2 >> 24)) & c.mask
	return c.shards[idx], h1, h2
}

// Exist reports whether key is present in any shard.
func (c *Coordinator) Exist(key []byte) bool {
	s, h1, h2 := c.route(key)
	return s.Exist(h1, h2, key)
}

// Get copies key's value into outValue and reports whether key was found.
func (c *Coordinator) Get(key, outValue []byte) bool {
	s, h1, h2 := c.route(key)
	return s.Get(h1, h2, key, outValue)
}

// Unset removes key if present, returning whether it was found.
func (c *Coordinator) Unset(key []byte) bool {
	s, h1, h2 := c.route(key)
	if !s.Unset(h1, h2, key) {
		return false
	}
	c.length--
	return true
}

// Set inserts or updates key/value, locking the coordinator into dict mode
// on its first call. Returns shardtable.SetUpdated or shardtable.SetInserted
// on success, plus whether the owning shard had to be resized to absorb the
// element (for callers reporting a resize metric). ErrModeConflict if cache
// has already locked this coordinator into cache mode; ErrSetExhausted if
// the owning shard could not absorb the element even after two resize
// attempts.
func (c *Coordinator) Set(key, value []byte) (result int, resized bool, err error) {
	if c.mode == ModeCache {
		return 0, false, ErrModeConflict
	}
	c.mode = ModeDict

	s, h1, h2 := c.route(key)
	result = s.Set(h1, h2, key, value)
	if result != shardtable.SetFailed {
		if result == shardtable.SetInserted {
			c.length++
		}
		return result, false, nil
	}

	// Two resize attempts against the shard's pre-retry bucket count, per
	// spec §4.4: bucketCount<<1, then (if that still fails) bucketCount<<2.
	original := s.BucketCount()
	for _, target := range [2]int{original << 1, original << 2} {
		if target > BucketsMax || int64(s.Stride())*int64(target) > BufferMax {
			return 0, false, ErrCapacityExceeded
		}
		if !s.Resize(target) {
			continue
		}
		result = s.Set(h1, h2, key, value)
		if result != shardtable.SetFailed {
			if result == shardtable.SetInserted {
				c.length++
			}
			return result, true, nil
		}
	}

	return 0, false, ErrSetExhausted
}

// Cache inserts or updates key/value under the bounded-cache policy,
// locking the coordinator into cache mode on its first call.
// ErrModeConflict if set has already locked this coordinator into dict mode.
func (c *Coordinator) Cache(key, value []byte) (int, error) {
	if c.mode == ModeDict {
		return 0, ErrModeConflict
	}
	c.mode = ModeCache

	s, h1, h2 := c.route(key)
	result := s.Cache(h1, h2, key, value)
	if result == shardtable.CacheInsertedNoEvict || result == shardtable.CacheInsertedEvicted {
		if result == shardtable.CacheInsertedNoEvict {
			c.length++
		}
	}
	return result, nil
}
