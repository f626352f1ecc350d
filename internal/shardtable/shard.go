// Package shardtable implements the Shard component of the spec: a
// contiguous byte buffer of cache-line-aligned buckets, and the six
// operations — get, exist, set, unset, cache, resize — that scan, mutate,
// and grow it. A Shard is single-writer: every exported method assumes the
// caller already serialises access (spec §5); the package itself never
// takes a lock.
//
// A Shard owns exactly one buffer at a time, replaced wholesale on resize.
// Every hot path (get/exist/set-update/cache-hit) touches one bucket in the
// common case; get, exist and set-update also scan the second-position
// bucket when the key is not found in the first.
package shardtable

import (
	"bytes"

	"github.com/kvtab/buckettable/internal/bucketlayout"
	"github.com/kvtab/buckettable/internal/bufpool"
	"github.com/kvtab/buckettable/internal/copydispatch"
	"github.com/kvtab/buckettable/internal/slotindex"
	"github.com/kvtab/buckettable/internal/tabhash"
)

// Shard owns a contiguous buffer of bucketCount buckets, each stride bytes.
type Shard struct {
	buf         []byte
	bucketCount int
	mask        uint32
	stride      int
	keySize     int
	valueSize   int
	tables      *tabhash.Tables
	pool        *bufpool.Pool
}

// New constructs a Shard with bucketCount buckets (must be a power of two,
// at least 2, per spec §3). tables supplies the tabulation hash; pool
// recycles retired buffers across resizes.
func New(keySize, valueSize, bucketCount int, tables *tabhash.Tables, pool *bufpool.Pool) *Shard {
	stride := bucketlayout.Stride(keySize, valueSize)
	return &Shard{
		buf:         pool.Get(stride * bucketCount),
		bucketCount: bucketCount,
		mask:        uint32(bucketCount - 1),
		stride:      stride,
		keySize:     keySize,
		valueSize:   valueSize,
		tables:      tables,
		pool:        pool,
	}
}

// BucketCount returns the current number of buckets in the shard.
func (s *Shard) BucketCount() int { return s.bucketCount }

// Capacity returns the shard's element capacity (bucketCount * 8 slots).
func (s *Shard) Capacity() int { return s.bucketCount * bucketlayout.Slots }

// SizeBytes returns the length of the underlying buffer.
func (s *Shard) SizeBytes() int64 { return int64(len(s.buf)) }

// Stride returns the byte length of one bucket, for callers projecting a
// hypothetical resize's buffer size without performing it.
func (s *Shard) Stride() int { return s.stride }

// OccupiedCount scans every bucket's presence bitmap and returns the total
// number of live slots. O(bucketCount); intended for debug/metrics use,
// never the hot path.
func (s *Shard) OccupiedCount() int {
	n := 0
	for i := 0; i < s.bucketCount; i++ {
		presence := bucketlayout.Presence(s.bucket(uint32(i)))
		for presence != 0 {
			n++
			presence &= presence - 1
		}
	}
	return n
}

func (s *Shard) bucket(idx uint32) []byte {
	off := int(idx) * s.stride
	return s.buf[off : off+s.stride]
}

// Route computes the raw tabulation hash (H1, H2) for key, using the same
// shared tables the coordinator hashes with. The coordinator hashes each key
// once per public operation and passes the pair into the
// Exist/Get/Set/Unset/Cache methods below, so bucket selection happens
// per-shard against each shard's own mask without rehashing; Resize uses
// Route to rehash residents into the new buffer.
func (s *Shard) Route(key []byte) (h1, h2 uint32) {
	return s.tables.Hash(key)
}

// buckets derives this shard's bucket indices and tag from a precomputed
// (h1, h2) pair.
func (s *Shard) buckets(h1, h2 uint32) (b1, b2 uint32, tag uint8) {
	tag = uint8((h1 >> 16) & 0xFF)
	b1 = h1 & s.mask
	b2 = h2 & s.mask
	return
}

// route recomputes (and derives bucket indices for) a resident key found
// during vacate, where the coordinator has no precomputed hash to hand in.
func (s *Shard) route(key []byte) (b1, b2 uint32, tag uint8) {
	h1, h2 := s.tables.Hash(key)
	return s.buckets(h1, h2)
}

// scanForKey looks for key within bucket, using tag as a cheap pre-filter
// before the byte-exact comparison. Returns the slot and true on a hit.
func (s *Shard) scanForKey(bucket []byte, key []byte, tag uint8) (slot uint8, ok bool) {
	presence := bucketlayout.Presence(bucket)
	for i := uint8(0); i < bucketlayout.Slots; i++ {
		if presence&(1<<i) == 0 {
			continue
		}
		if bucketlayout.Tag(bucket, i) != tag {
			continue
		}
		if bytes.Equal(bucketlayout.Key(bucket, s.keySize, s.valueSize, i), key) {
			return i, true
		}
	}
	return 0, false
}

func (s *Shard) writeSlot(bucket []byte, slot uint8, key, value []byte, tag uint8) {
	copydispatch.Copy(bucketlayout.Key(bucket, s.keySize, s.valueSize, slot), key)
	copydispatch.Copy(bucketlayout.Value(bucket, s.keySize, s.valueSize, slot), value)
	bucketlayout.SetTag(bucket, slot, tag)
	bucketlayout.SetOccupied(bucket, slot)
}

func (s *Shard) clearSlot(bucket []byte, slot uint8) {
	copydispatch.Zero(bucketlayout.Key(bucket, s.keySize, s.valueSize, slot))
	copydispatch.Zero(bucketlayout.Value(bucket, s.keySize, s.valueSize, slot))
	bucketlayout.SetTag(bucket, slot, 0)
	bucketlayout.ClearOccupied(bucket, slot)
}

// Exist reports whether key is present, without mutating anything. h1, h2
// must be the tabulation hash of key, as returned by Route.
func (s *Shard) Exist(h1, h2 uint32, key []byte) bool {
	b1, b2, tag := s.buckets(h1, h2)
	fi := bucketlayout.TagFilterIndex(tag)
	fb := bucketlayout.TagFilterBit(tag)

	bucket1 := s.bucket(b1)
	if bucketlayout.Filter(bucket1, fi)&fb == 0 {
		return false
	}
	if _, ok := s.scanForKey(bucket1, key, tag); ok {
		return true
	}
	bucket2 := s.bucket(b2)
	_, ok := s.scanForKey(bucket2, key, tag)
	return ok
}

// Get copies key's value into outValue and reports whether key was found.
// On a hit, the CLOCK recently-used bit is set for the owning slot
// regardless of mode (harmless in dict mode, spec §4.3).
func (s *Shard) Get(h1, h2 uint32, key []byte, outValue []byte) bool {
	b1, b2, tag := s.buckets(h1, h2)
	fi := bucketlayout.TagFilterIndex(tag)
	fb := bucketlayout.TagFilterBit(tag)

	bucket1 := s.bucket(b1)
	if bucketlayout.Filter(bucket1, fi)&fb == 0 {
		return false
	}
	if slot, ok := s.scanForKey(bucket1, key, tag); ok {
		bucketlayout.SetClockUsed(bucket1, slot)
		copydispatch.Copy(outValue, bucketlayout.Value(bucket1, s.keySize, s.valueSize, slot))
		return true
	}
	bucket2 := s.bucket(b2)
	if slot, ok := s.scanForKey(bucket2, key, tag); ok {
		bucketlayout.SetClockUsed(bucket2, slot)
		copydispatch.Copy(outValue, bucketlayout.Value(bucket2, s.keySize, s.valueSize, slot))
		return true
	}
	return false
}

// Set result codes, matching spec §4.3.
const (
	SetUpdated  = 1
	SetInserted = 0
	SetFailed   = -1
)

// Set inserts or updates key/value. Returns SetUpdated, SetInserted, or
// SetFailed (meaning: the coordinator should resize and retry).
func (s *Shard) Set(h1, h2 uint32, key, value []byte) int {
	b1, b2, tag := s.buckets(h1, h2)
	fi := bucketlayout.TagFilterIndex(tag)
	fb := bucketlayout.TagFilterBit(tag)

	bucket1 := s.bucket(b1)
	if bucketlayout.Filter(bucket1, fi)&fb != 0 {
		if slot, ok := s.scanForKey(bucket1, key, tag); ok {
			copydispatch.Copy(bucketlayout.Value(bucket1, s.keySize, s.valueSize, slot), value)
			return SetUpdated
		}
		bucket2 := s.bucket(b2)
		if slot, ok := s.scanForKey(bucket2, key, tag); ok {
			copydispatch.Copy(bucketlayout.Value(bucket2, s.keySize, s.valueSize, slot), value)
			return SetUpdated
		}
	}

	if slot := slotindex.FirstEmpty(bucketlayout.Presence(bucket1)); slot < bucketlayout.Slots {
		s.writeSlot(bucket1, slot, key, value, tag)
		bucketlayout.SetFilterBit(bucket1, fi, fb)
		return SetInserted
	}

	bucket2 := s.bucket(b2)
	if slot := slotindex.FirstEmpty(bucketlayout.Presence(bucket2)); slot < bucketlayout.Slots {
		s.writeSlot(bucket2, slot, key, value, tag)
		bucketlayout.SetFilterBit(bucket1, fi, fb) // filter always lives on the first-position bucket
		bucketlayout.IncCounter(bucket2)
		return SetInserted
	}

	if slot, ok := s.tryVacate(b1); ok {
		bucket1 = s.bucket(b1)
		s.writeSlot(bucket1, slot, key, value, tag)
		bucketlayout.SetFilterBit(bucket1, fi, fb)
		return SetInserted
	}

	if slot, ok := s.tryVacate(b2); ok {
		bucket2 = s.bucket(b2)
		s.writeSlot(bucket2, slot, key, value, tag)
		bucketlayout.SetFilterBit(bucket1, fi, fb)
		bucketlayout.IncCounter(bucket2)
		return SetInserted
	}

	return SetFailed
}

// Unset removes key if present, returning whether it was found.
func (s *Shard) Unset(h1, h2 uint32, key []byte) bool {
	b1, b2, tag := s.buckets(h1, h2)
	fi := bucketlayout.TagFilterIndex(tag)

	bucket1 := s.bucket(b1)
	if slot, ok := s.scanForKey(bucket1, key, tag); ok {
		s.clearSlot(bucket1, slot)
		s.filterReset(bucket1, fi)
		return true
	}

	bucket2 := s.bucket(b2)
	if slot, ok := s.scanForKey(bucket2, key, tag); ok {
		s.clearSlot(bucket2, slot)
		// Deliberately no filterReset(bucket1, fi) here — the source leaves
		// this stale until the next b1 removal (see spec's open question).
		s.filterDecrementSecondPosition(bucket1)
		return true
	}

	return false
}
