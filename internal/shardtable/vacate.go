package shardtable

import (
	"github.com/kvtab/buckettable/internal/bucketlayout"
	"github.com/kvtab/buckettable/internal/copydispatch"
	"github.com/kvtab/buckettable/internal/slotindex"
)

// tryVacate attempts cuckoo-style displacement out of the bucket at idx:
// for each occupied slot, if that resident's *other* candidate bucket has
// room, move the resident there and report the slot just freed in idx.
//
// Moving a resident never changes which bucket is its first position
// (that's fixed by its own H1 hash) — only where it currently sits — so a
// resident's filter bit, which always lives at its first-position bucket,
// never needs touching here. Only the second-position counters move:
//   - resident's first position was idx (moving out to its second
//     position at the alt bucket): increment the alt bucket's counter.
//   - resident's first position was the alt bucket (it had been living at
//     idx as its own second position): decrement idx's counter.
func (s *Shard) tryVacate(idx uint32) (freedSlot uint8, ok bool) {
	bucket := s.bucket(idx)
	presence := bucketlayout.Presence(bucket)

	for slot := uint8(0); slot < bucketlayout.Slots; slot++ {
		if presence&(1<<slot) == 0 {
			continue
		}

		key := bucketlayout.Key(bucket, s.keySize, s.valueSize, slot)
		b1r, b2r, _ := s.route(key)

		var altIdx uint32
		var residentFirstIsHere bool
		switch {
		case b1r == idx:
			altIdx, residentFirstIsHere = b2r, true
		case b2r == idx:
			altIdx, residentFirstIsHere = b1r, false
		default:
			// Invariant violation guard: a resident must live at one of its
			// own two candidate buckets. Skip rather than corrupt state.
			continue
		}

		altBucket := s.bucket(altIdx)
		dest := slotindex.FirstEmpty(bucketlayout.Presence(altBucket))
		if dest == bucketlayout.Slots {
			continue
		}

		tag := bucketlayout.Tag(bucket, slot)
		value := bucketlayout.Value(bucket, s.keySize, s.valueSize, slot)
		copydispatch.Copy(bucketlayout.Key(altBucket, s.keySize, s.valueSize, dest), key)
		copydispatch.Copy(bucketlayout.Value(altBucket, s.keySize, s.valueSize, dest), value)
		bucketlayout.SetTag(altBucket, dest, tag)
		bucketlayout.SetOccupied(altBucket, dest)

		s.clearSlot(bucket, slot)
		bucketlayout.ClearClockUsed(bucket, slot)

		if residentFirstIsHere {
			bucketlayout.IncCounter(altBucket)
		} else {
			bucketlayout.DecCounter(bucket)
		}

		return slot, true
	}

	return 0, false
}
