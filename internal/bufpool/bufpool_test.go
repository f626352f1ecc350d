package bufpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPutRoundtripZeroesBuffer(t *testing.T) {
	p := New()
	buf := p.Get(64)
	require.Len(t, buf, 64)
	for i := range buf {
		buf[i] = 0xFF
	}
	p.Put(buf)

	reused := p.Get(64)
	require.Len(t, reused, 64)
	for i, b := range reused {
		require.Equalf(t, byte(0), b, "index %d", i)
	}
}

func TestStatsTracksRetirements(t *testing.T) {
	p := New()
	for i := 0; i < 5; i++ {
		p.Put(make([]byte, 128))
	}
	retired, sizes := p.Stats()
	require.EqualValues(t, 5, retired)
	require.Len(t, sizes, 5)
	for _, s := range sizes {
		require.Equal(t, 128, s)
	}
}

func TestGetDifferentSizeDoesNotReuse(t *testing.T) {
	p := New()
	p.Put(make([]byte, 32))
	buf := p.Get(64)
	require.Len(t, buf, 64)
}
