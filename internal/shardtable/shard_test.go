package shardtable

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvtab/buckettable/internal/bufpool"
	"github.com/kvtab/buckettable/internal/tabhash"
)

func newTestShard(t *testing.T, keySize, valueSize, bucketCount int) *Shard {
	t.Helper()
	tables := tabhash.NewTables()
	pool := bufpool.New()
	return New(keySize, valueSize, bucketCount, tables, pool)
}

func key4(n uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, n)
	return b
}

func callSet(s *Shard, key, value []byte) int {
	h1, h2 := s.Route(key)
	return s.Set(h1, h2, key, value)
}

func callGet(s *Shard, key, outValue []byte) bool {
	h1, h2 := s.Route(key)
	return s.Get(h1, h2, key, outValue)
}

func callExist(s *Shard, key []byte) bool {
	h1, h2 := s.Route(key)
	return s.Exist(h1, h2, key)
}

func callUnset(s *Shard, key []byte) bool {
	h1, h2 := s.Route(key)
	return s.Unset(h1, h2, key)
}

func callCache(s *Shard, key, value []byte) int {
	h1, h2 := s.Route(key)
	return s.Cache(h1, h2, key, value)
}

func TestSetGetUnsetRoundtrip(t *testing.T) {
	s := newTestShard(t, 4, 4, 8)
	k := key4(1)
	v := []byte{0xAA, 0xAA, 0xAA, 0xAA}

	require.Equal(t, SetInserted, callSet(s, k, v))
	require.True(t, callExist(s, k))

	out := make([]byte, 4)
	require.True(t, callGet(s, k, out))
	require.Equal(t, v, out)

	v2 := []byte{0xBB, 0xBB, 0xBB, 0xBB}
	require.Equal(t, SetUpdated, callSet(s, k, v2))
	require.True(t, callGet(s, k, out))
	require.Equal(t, v2, out)

	require.True(t, callUnset(s, k))
	require.False(t, callExist(s, k))
	require.False(t, callGet(s, k, out))
}

func TestSetZeroLengthValue(t *testing.T) {
	s := newTestShard(t, 4, 0, 8)
	k := key4(7)
	require.Equal(t, SetInserted, callSet(s, k, nil))
	require.True(t, callGet(s, k, nil))
}

func TestUnknownKeyNotFound(t *testing.T) {
	s := newTestShard(t, 4, 4, 8)
	k := key4(42)
	require.False(t, callExist(s, k))
	require.False(t, callGet(s, k, make([]byte, 4)))
	require.False(t, callUnset(s, k))
}

func TestFillBeyondCuckooCapacityReturnsFailed(t *testing.T) {
	s := newTestShard(t, 4, 4, 2)
	v := make([]byte, 4)
	failed := false
	for i := uint32(0); i < 2000; i++ {
		if callSet(s, key4(i), v) == SetFailed {
			failed = true
			break
		}
	}
	require.True(t, failed, "a tiny fixed-size shard must eventually overflow its cuckoo capacity")
}

func TestResizeAbsorbsOverflowedKeys(t *testing.T) {
	s := newTestShard(t, 4, 4, 2)
	v := make([]byte, 4)

	var failedAt uint32 = 0
	var inserted []uint32
	for i := uint32(0); i < 64; i++ {
		r := callSet(s, key4(i), v)
		if r == SetFailed {
			failedAt = i
			break
		}
		inserted = append(inserted, i)
	}
	require.NotZero(t, failedAt, "expected an overflow before exhausting the loop")

	require.True(t, s.Resize(s.BucketCount()*2))
	require.Equal(t, SetInserted, callSet(s, key4(failedAt), v))

	for _, i := range inserted {
		require.Truef(t, callExist(s, key4(i)), "key %d lost across resize", i)
	}
}

func TestCacheEvictsWithoutGrowing(t *testing.T) {
	s := newTestShard(t, 4, 4, 2) // 16 slots total capacity
	v := make([]byte, 4)

	before := s.BucketCount()
	sawEviction := false
	for i := uint32(0); i < 10000; i++ {
		r := callCache(s, key4(i), v)
		if r == CacheInsertedEvicted {
			sawEviction = true
			break
		}
	}
	require.True(t, sawEviction)
	require.Equal(t, before, s.BucketCount(), "cache mode must never resize")
}

func TestCacheUpdateReturnsOne(t *testing.T) {
	s := newTestShard(t, 4, 4, 4)
	k := key4(5)
	v1 := []byte{1, 1, 1, 1}
	v2 := []byte{2, 2, 2, 2}

	require.Equal(t, CacheInsertedNoEvict, callCache(s, k, v1))
	require.Equal(t, CacheUpdated, callCache(s, k, v2))

	out := make([]byte, 4)
	require.True(t, callGet(s, k, out))
	require.Equal(t, v2, out)
}

func TestLargeKeyAndValueBoundaries(t *testing.T) {
	s := newTestShard(t, 64, 0, 4)
	k := make([]byte, 64)
	for i := range k {
		k[i] = byte(i)
	}
	require.Equal(t, SetInserted, callSet(s, k, nil))
	require.True(t, callExist(s, k))
}

func TestOccupiedCountTracksInsertsAndRemovals(t *testing.T) {
	s := newTestShard(t, 4, 4, 8)
	v := make([]byte, 4)
	for i := uint32(0); i < 10; i++ {
		require.Equal(t, SetInserted, callSet(s, key4(i), v))
	}
	require.Equal(t, 10, s.OccupiedCount())

	require.True(t, callUnset(s, key4(3)))
	require.Equal(t, 9, s.OccupiedCount())
}
