package bucketlayout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrideAlignment(t *testing.T) {
	for _, tc := range []struct{ keySize, valueSize int }{
		{4, 4}, {4, 0}, {8, 8}, {64, 1048576}, {4, 1},
	} {
		s := Stride(tc.keySize, tc.valueSize)
		require.Zero(t, s%64, "keySize=%d valueSize=%d stride=%d", tc.keySize, tc.valueSize, s)
		require.GreaterOrEqual(t, s, MetaLen+Slots*(tc.keySize+tc.valueSize))
	}
}

func TestPresenceAndTagRoundtrip(t *testing.T) {
	bucket := make([]byte, Stride(4, 4))

	require.False(t, IsOccupied(bucket, 3))
	SetOccupied(bucket, 3)
	require.True(t, IsOccupied(bucket, 3))
	SetTag(bucket, 3, 0xAB)
	require.EqualValues(t, 0xAB, Tag(bucket, 3))
	ClearOccupied(bucket, 3)
	require.False(t, IsOccupied(bucket, 3))
}

func TestCounterSaturates(t *testing.T) {
	bucket := make([]byte, Stride(4, 4))
	for i := 0; i < 300; i++ {
		IncCounter(bucket)
	}
	require.EqualValues(t, 0xFF, Counter(bucket))
	DecCounter(bucket)
	require.EqualValues(t, 0xFF, Counter(bucket), "saturated counter must never decrement")
}

func TestKeyValueViewsDoNotOverlap(t *testing.T) {
	bucket := make([]byte, Stride(4, 4))
	copy(Key(bucket, 4, 4, 0), []byte{1, 2, 3, 4})
	copy(Value(bucket, 4, 4, 0), []byte{5, 6, 7, 8})
	copy(Key(bucket, 4, 4, 1), []byte{9, 9, 9, 9})

	require.Equal(t, []byte{1, 2, 3, 4}, Key(bucket, 4, 4, 0))
	require.Equal(t, []byte{5, 6, 7, 8}, Value(bucket, 4, 4, 0))
	require.Equal(t, []byte{9, 9, 9, 9}, Key(bucket, 4, 4, 1))
}

func TestTagFilterIndexAndBit(t *testing.T) {
	// T = 0b0101_0011 -> fi = (T>>4)&7 = 0b101 = 5, fb = 1<<(T&7) = 1<<3 = 8
	tag := uint8(0b0101_0011)
	require.EqualValues(t, 5, TagFilterIndex(tag))
	require.EqualValues(t, 1<<3, TagFilterBit(tag))
}
