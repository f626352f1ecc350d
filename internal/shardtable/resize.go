package shardtable

import "github.com/kvtab/buckettable/internal/bucketlayout"

// Resize rebuilds the shard into a fresh buffer of newBucketCount buckets
// (must be a power of two, >= 2*current bucketCount per spec §4.3
// precondition, enforced by the caller coordinator). Every occupied slot
// in the old buffer is rehashed and reinserted via Set; filters and CLOCK
// state are discarded and rebuilt from scratch. If any reinsertion would
// itself require displacement the new size cannot absorb, the old buffer
// is restored and Resize reports failure — the shard is left exactly as
// it was.
func (s *Shard) Resize(newBucketCount int) bool {
	newStride := s.stride
	newBuf := s.pool.Get(newStride * newBucketCount)

	tmp := &Shard{
		buf:         newBuf,
		bucketCount: newBucketCount,
		mask:        uint32(newBucketCount - 1),
		stride:      newStride,
		keySize:     s.keySize,
		valueSize:   s.valueSize,
		tables:      s.tables,
		pool:        s.pool,
	}

	for i := 0; i < s.bucketCount; i++ {
		bucket := s.bucket(uint32(i))
		presence := bucketlayout.Presence(bucket)
		for slot := uint8(0); slot < bucketlayout.Slots; slot++ {
			if presence&(1<<slot) == 0 {
				continue
			}
			key := bucketlayout.Key(bucket, s.keySize, s.valueSize, slot)
			value := bucketlayout.Value(bucket, s.keySize, s.valueSize, slot)
			h1, h2 := tmp.Route(key)
			if tmp.Set(h1, h2, key, value) == SetFailed {
				s.pool.Put(newBuf)
				return false
			}
		}
	}

	oldBuf := s.buf
	s.buf = newBuf
	s.bucketCount = newBucketCount
	s.mask = tmp.mask
	s.pool.Put(oldBuf)
	return true
}
