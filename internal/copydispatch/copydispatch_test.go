package copydispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopySizes(t *testing.T) {
	sizes := []int{0, 4, 8, 16, 20, 32, 48, 64, 128, 256, 7, 1000}
	for _, n := range sizes {
		src := make([]byte, n)
		for i := range src {
			src[i] = byte(i)
		}
		dst := make([]byte, n)
		Copy(dst, src)
		require.Equal(t, src, dst, "size=%d", n)
	}
}

func TestZeroSizes(t *testing.T) {
	sizes := []int{0, 4, 8, 16, 20, 32, 48, 64, 128, 256, 9, 513}
	for _, n := range sizes {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = 0xFF
		}
		Zero(buf)
		for i, b := range buf {
			require.Equalf(t, byte(0), b, "size=%d index=%d", n, i)
		}
	}
}
