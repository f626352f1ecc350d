package shardtable

import (
	"github.com/kvtab/buckettable/internal/bucketlayout"
	"github.com/kvtab/buckettable/internal/copydispatch"
)

// Cache result codes, matching spec §4.3.
const (
	CacheInsertedNoEvict = 0
	CacheUpdated         = 1
	CacheInsertedEvicted = 2
)

// Cache inserts or updates key/value under the bounded-cache policy. Unlike
// Set, Cache never searches the second position and never grows the
// shard; a full bucket evicts its CLOCK victim instead.
func (s *Shard) Cache(h1, h2 uint32, key, value []byte) int {
	b1, _, tag := s.buckets(h1, h2)
	fi := bucketlayout.TagFilterIndex(tag)
	fb := bucketlayout.TagFilterBit(tag)
	bucket1 := s.bucket(b1)

	if bucketlayout.Filter(bucket1, fi)&fb != 0 {
		if slot, ok := s.scanForKey(bucket1, key, tag); ok {
			copydispatch.Copy(bucketlayout.Value(bucket1, s.keySize, s.valueSize, slot), value)
			bucketlayout.SetClockUsed(bucket1, slot)
			return CacheUpdated
		}
	}

	victim := s.evict(bucket1)
	displaced := bucketlayout.IsOccupied(bucket1, victim)
	if displaced {
		victimTag := bucketlayout.Tag(bucket1, victim)
		bucketlayout.ClearOccupied(bucket1, victim)
		s.filterReset(bucket1, bucketlayout.TagFilterIndex(victimTag))
	}

	s.writeSlot(bucket1, victim, key, value, tag)
	bucketlayout.SetFilterBit(bucket1, fi, fb)
	bucketlayout.SetClockUsed(bucket1, victim)

	if displaced {
		return CacheInsertedEvicted
	}
	return CacheInsertedNoEvict
}

// evict runs the CLOCK sweep over bucket's 8 slots, examining up to 9 ticks
// (one full sweep plus one to guarantee progress per spec §4.3) and
// returns the victim slot index.
func (s *Shard) evict(bucket []byte) uint8 {
	var victim uint8
	for i := 0; i < bucketlayout.Slots+1; i++ {
		slot := bucketlayout.ClockHand(bucket)
		bucketlayout.SetClockHand(bucket, (slot+1)&7)
		victim = slot
		if !bucketlayout.ClockUsed(bucket, slot) {
			return slot
		}
		bucketlayout.ClearClockUsed(bucket, slot)
	}
	return victim
}

// filterReset rebuilds filter fi from the bucket's live tags, but only
// when it is safe to do so authoritatively: if any element lives here in
// second position (counter != 0), we cannot tell from this bucket alone
// whether fi's bit belongs to a first-position resident we can see or a
// second-position one whose true owner bucket we are not looking at, so we
// abort rather than risk clearing a bit still in use.
func (s *Shard) filterReset(bucket []byte, fi uint8) {
	if bucketlayout.Counter(bucket) != 0 {
		return
	}
	if bucketlayout.Filter(bucket, fi) == 0 {
		return
	}
	bucketlayout.ClearFilter(bucket, fi)

	presence := bucketlayout.Presence(bucket)
	for slot := uint8(0); slot < bucketlayout.Slots; slot++ {
		if presence&(1<<slot) == 0 {
			continue
		}
		tag := bucketlayout.Tag(bucket, slot)
		if bucketlayout.TagFilterIndex(tag) == fi {
			bucketlayout.SetFilterBit(bucket, fi, bucketlayout.TagFilterBit(tag))
		}
	}
}

// filterDecrementSecondPosition decrements b1's second-position counter
// after a second-position removal from the bucket whose filter bit b1
// authoritatively owns.
func (s *Shard) filterDecrementSecondPosition(b1Bucket []byte) {
	bucketlayout.DecCounter(b1Bucket)
}
