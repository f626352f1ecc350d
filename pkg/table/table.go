// Package table is the public, byte-buffer-oriented API described in
// spec §6: a fixed key/value-size container operating in exactly one of two
// mutually exclusive modes (an auto-growing dict, or a bounded CLOCK cache),
// built from the cuckoo-style multi-bucket hash table in internal/shardtable
// fanned out across shards by internal/coordinator.
//
// A Table is single-writer, matching spec §5: every exported method assumes
// the caller already serializes access. Concurrency, if needed, belongs in
// an external collaborator such as pkg/typed.
package table

import (
	"go.uber.org/zap"

	"github.com/kvtab/buckettable/internal/bufpool"
	"github.com/kvtab/buckettable/internal/bucketlayout"
	"github.com/kvtab/buckettable/internal/coordinator"
	"github.com/kvtab/buckettable/internal/shardtable"
	"github.com/kvtab/buckettable/internal/tabhash"
)

// Result codes for Get/Exist/Set/Unset/Cache, matching spec §6 verbatim.
const (
	Miss = 0
	Hit  = 1

	Inserted = 0
	Updated  = 1

	CacheInsertedNoEvict = 0
	CacheUpdated         = 1
	CacheInsertedEvicted = 2
)

// Table is the public handle to a sharded, cuckoo-style bucket table.
type Table struct {
	coord     *coordinator.Coordinator
	keySize   int
	valueSize int

	logger  *zap.Logger
	metrics metricsSink
}

// New constructs a Table for fixed-width keys and values. keySize must be a
// multiple of 4 in [4,64]; valueSize must be in [0,1048576]. Options may
// override elementsMin/elementsMax sizing hints and plug in a logger or
// Prometheus registry.
func New(keySize, valueSize int, opts ...Option) (*Table, error) {
	cfg := defaultConfig(keySize, valueSize)
	if err := applyOptions(cfg, opts); err != nil {
		return nil, err
	}

	shardCount := shardCountFor(cfg.elementsMin)
	bucketCount := initialBucketCountFor(cfg.elementsMin, shardCount)

	tables := tabhash.NewTables()
	pool := bufpool.New()
	shards := make([]*shardtable.Shard, shardCount)
	for i := range shards {
		shards[i] = shardtable.New(keySize, valueSize, bucketCount, tables, pool)
	}

	return &Table{
		coord:     coordinator.New(shards, tables),
		keySize:   keySize,
		valueSize: valueSize,
		logger:    cfg.logger,
		metrics:   newMetricsSink(cfg.registry),
	}, nil
}

func (t *Table) slice(buf []byte, off, size int) []byte {
	if size == 0 {
		return nil
	}
	return buf[off : off+size]
}

// Exist reports whether the keySize bytes of key starting at keyOff are
// present. Returns Hit or Miss.
func (t *Table) Exist(key []byte, keyOff int) int {
	k := t.slice(key, keyOff, t.keySize)
	if t.coord.Exist(k) {
		t.metrics.incHit(t.shardFor(k))
		return Hit
	}
	t.metrics.incMiss(t.shardFor(k))
	return Miss
}

// Get copies the matching value into value[valueOff:valueOff+valueSize] and
// returns Hit or Miss.
func (t *Table) Get(key []byte, keyOff int, value []byte, valueOff int) int {
	k := t.slice(key, keyOff, t.keySize)
	v := t.slice(value, valueOff, t.valueSize)
	found := t.coord.Get(k, v)
	if !found {
		t.metrics.incMiss(t.shardFor(k))
		return Miss
	}
	t.metrics.incHit(t.shardFor(k))
	return Hit
}

// Set inserts or updates key/value under the auto-growing dict policy,
// locking the table into dict mode on first call. Returns Inserted or
// Updated. Returns ErrModeConflict if the table is already in cache mode,
// or ErrSetExhausted if even two shard-doublings could not absorb the
// element.
func (t *Table) Set(key []byte, keyOff int, value []byte, valueOff int) (int, error) {
	k := t.slice(key, keyOff, t.keySize)
	v := t.slice(value, valueOff, t.valueSize)

	result, resized, err := t.coord.Set(k, v)
	if err != nil {
		return 0, t.translateErr(err)
	}
	shardIdx := t.shardFor(k)
	t.metrics.incSet(shardIdx)
	if resized {
		t.metrics.incResize(shardIdx)
	}
	if result == shardtable.SetInserted {
		return Inserted, nil
	}
	return Updated, nil
}

// Unset removes key if present, returning Hit if it was found, Miss
// otherwise.
func (t *Table) Unset(key []byte, keyOff int) int {
	k := t.slice(key, keyOff, t.keySize)
	if t.coord.Unset(k) {
		return Hit
	}
	return Miss
}

// Cache inserts or updates key/value under the bounded CLOCK-eviction
// policy, locking the table into cache mode on first call. Returns
// CacheInsertedNoEvict, CacheUpdated, or CacheInsertedEvicted. Returns
// ErrModeConflict if the table is already in dict mode.
func (t *Table) Cache(key []byte, keyOff int, value []byte, valueOff int) (int, error) {
	k := t.slice(key, keyOff, t.keySize)
	v := t.slice(value, valueOff, t.valueSize)

	result, err := t.coord.Cache(k, v)
	if err != nil {
		return 0, t.translateErr(err)
	}
	t.metrics.incSet(t.shardFor(k))
	if result == shardtable.CacheInsertedEvicted {
		t.metrics.incEviction(t.shardFor(k))
	}
	return result, nil
}

// translateErr maps internal/coordinator's sentinel errors onto this
// package's public ones (same wording, own identity, so callers never need
// to import an internal package to use errors.Is), logging the rare/slow
// ones along the way.
func (t *Table) translateErr(err error) error {
	switch err {
	case coordinator.ErrModeConflict:
		return ErrModeConflict
	case coordinator.ErrSetExhausted:
		t.logger.Warn("set exhausted after resize retries", zap.Int("keySize", t.keySize))
		return ErrSetExhausted
	case coordinator.ErrCapacityExceeded:
		t.logger.Warn("resize would exceed maximum capacity", zap.Int("keySize", t.keySize))
		return ErrCapacityExceeded
	default:
		return err
	}
}

func (t *Table) shardFor(key []byte) int {
	if _, ok := t.metrics.(noopMetrics); ok {
		return 0
	}
	return t.coord.ShardFor(key)
}

// Length returns the number of live elements across every shard.
func (t *Table) Length() int { return t.coord.Length() }

// Capacity returns the sum, across every shard, of bucketCount*8.
func (t *Table) Capacity() int { return t.coord.Capacity() }

// Size returns the total number of bytes allocated across every shard's
// buckets.
func (t *Table) Size() int64 { return t.coord.SizeBytes() }

// Load returns Length()/Capacity(), or 0 when capacity is 0.
func (t *Table) Load() float64 { return t.coord.Load() }

// Mode re-exports the coordinator's locked operating mode, for callers
// (pkg/typed's GetOrLoad) that need to decide between Set and Cache without
// tripping ErrModeConflict.
type Mode = coordinator.Mode

const (
	ModeUnset = coordinator.ModeUnset
	ModeDict  = coordinator.ModeDict
	ModeCache = coordinator.ModeCache
)

// Mode returns the table's current locked operating mode.
func (t *Table) Mode() Mode { return t.coord.Mode() }

// Snapshot captures the table's current occupancy, aggregate and per-shard,
// for a debug endpoint or periodic metrics refresh. O(total buckets).
type Snapshot struct {
	Length    int
	Capacity  int
	Size      int64
	Load      float64
	KeySize   int
	ValueSize int
	Shards    []coordinator.ShardSnapshot
}

// Snapshot builds a Snapshot and, if a Prometheus registry was configured,
// refreshes the per-shard bucket_bytes/load_factor gauges from it.
func (t *Table) Snapshot() Snapshot {
	shards := t.coord.Snapshots()
	for i, s := range shards {
		t.metrics.setBucketBytes(i, s.SizeBytes)
		load := 0.0
		if s.Capacity > 0 {
			load = float64(s.Occupied) / float64(s.Capacity)
		}
		t.metrics.setLoadFactor(i, load)
	}
	return Snapshot{
		Length:    t.coord.Length(),
		Capacity:  t.coord.Capacity(),
		Size:      t.coord.SizeBytes(),
		Load:      t.coord.Load(),
		KeySize:   t.keySize,
		ValueSize: t.valueSize,
		Shards:    shards,
	}
}

// BucketStride returns the byte stride of one bucket for this table's
// key/value sizes, exposed for tooling that wants to reason about raw
// buffer layout.
func (t *Table) BucketStride() int {
	return bucketlayout.Stride(t.keySize, t.valueSize)
}
