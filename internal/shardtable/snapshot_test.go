package shardtable

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// bucketSnapshot captures the pieces of one bucket relevant to invariant
// checks, independent of the raw byte layout, so test diffs read as
// structured data rather than hex dumps.
type bucketSnapshot struct {
	Presence uint8
	Tags     [8]uint8
	Counter  uint8
}

func snapshotBucket(s *Shard, idx uint32) bucketSnapshot {
	b := s.bucket(idx)
	var snap bucketSnapshot
	snap.Presence = b[9]
	snap.Counter = b[8]
	for i := 0; i < 8; i++ {
		snap.Tags[i] = b[10+i]
	}
	return snap
}

func TestSnapshotUnaffectedByReadOnlyOps(t *testing.T) {
	s := newTestShard(t, 4, 4, 4)
	v := make([]byte, 4)
	for i := uint32(0); i < 6; i++ {
		require.Equal(t, SetInserted, callSet(s, key4(i), v))
	}

	before := make([]bucketSnapshot, s.BucketCount())
	for i := range before {
		before[i] = snapshotBucket(s, uint32(i))
	}

	// Exist/Get must not mutate bucket metadata aside from the CLOCK bit,
	// which this snapshot deliberately excludes.
	for i := uint32(0); i < 6; i++ {
		callExist(s, key4(i))
		callGet(s, key4(i), make([]byte, 4))
	}

	for i := range before {
		after := snapshotBucket(s, uint32(i))
		if diff := cmp.Diff(before[i], after); diff != "" {
			t.Errorf("bucket %d mutated by read-only ops (-before +after):\n%s", i, diff)
		}
	}
}
