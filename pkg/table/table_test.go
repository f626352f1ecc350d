package table

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func key4(n uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, n)
	return b
}

func TestNewRejectsBadKeySize(t *testing.T) {
	_, err := New(5, 4)
	require.ErrorIs(t, err, ErrKeySizeRange)

	_, err = New(0, 4)
	require.ErrorIs(t, err, ErrKeySizeRange)

	_, err = New(68, 4)
	require.ErrorIs(t, err, ErrKeySizeRange)
}

func TestNewRejectsBadValueSize(t *testing.T) {
	_, err := New(4, -1)
	require.ErrorIs(t, err, ErrValueSizeRange)

	_, err = New(4, 1048577)
	require.ErrorIs(t, err, ErrValueSizeRange)
}

func TestSetGetUnsetRoundtrip(t *testing.T) {
	tbl, err := New(4, 4, WithElementsMin(64))
	require.NoError(t, err)

	k := key4(1)
	v := []byte{9, 9, 9, 9}
	buf := append(append([]byte{}, k...), v...)

	r, err := tbl.Set(buf, 0, buf, 4)
	require.NoError(t, err)
	require.Equal(t, Inserted, r)
	require.Equal(t, 1, tbl.Length())

	require.Equal(t, Hit, tbl.Exist(buf, 0))

	out := make([]byte, 4)
	require.Equal(t, Hit, tbl.Get(buf, 0, out, 0))
	require.Equal(t, v, out)

	require.Equal(t, Hit, tbl.Unset(buf, 0))
	require.Equal(t, 0, tbl.Length())
	require.Equal(t, Miss, tbl.Exist(buf, 0))
}

func TestSetThenCacheIsModeConflict(t *testing.T) {
	tbl, err := New(4, 4, WithElementsMin(64))
	require.NoError(t, err)

	_, err = tbl.Set(key4(1), 0, make([]byte, 4), 0)
	require.NoError(t, err)

	_, err = tbl.Cache(key4(2), 0, make([]byte, 4), 0)
	require.ErrorIs(t, err, ErrModeConflict)
}

func TestCacheModeNeverResizes(t *testing.T) {
	tbl, err := New(4, 4, WithElementsMin(64))
	require.NoError(t, err)

	before := tbl.Capacity()
	v := make([]byte, 4)
	for i := uint32(0); i < 10000; i++ {
		_, err := tbl.Cache(key4(i), 0, v, 0)
		require.NoError(t, err)
	}
	require.Equal(t, before, tbl.Capacity())
}

func TestZeroValueSizeToleratesNilValue(t *testing.T) {
	tbl, err := New(4, 0, WithElementsMin(64))
	require.NoError(t, err)

	r, err := tbl.Set(key4(1), 0, nil, 0)
	require.NoError(t, err)
	require.Equal(t, Inserted, r)
	require.Equal(t, Hit, tbl.Get(key4(1), 0, nil, 0))
}

func TestSnapshotReflectsOccupancy(t *testing.T) {
	tbl, err := New(4, 4, WithElementsMin(64))
	require.NoError(t, err)

	v := make([]byte, 4)
	for i := uint32(0); i < 20; i++ {
		_, err := tbl.Set(key4(i), 0, v, 0)
		require.NoError(t, err)
	}

	snap := tbl.Snapshot()
	require.Equal(t, 20, snap.Length)
	require.Equal(t, tbl.Capacity(), snap.Capacity)
	require.NotEmpty(t, snap.Shards)
}
