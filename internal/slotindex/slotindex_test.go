package slotindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstEmptyKnownCases(t *testing.T) {
	require.EqualValues(t, 0, FirstEmpty(0x00))
	require.EqualValues(t, 8, FirstEmpty(0xFF))
	require.EqualValues(t, 1, FirstEmpty(0b0000_0001))
	require.EqualValues(t, 3, FirstEmpty(0b0000_0111))
	require.EqualValues(t, 7, FirstEmpty(0b0111_1111))
}

func TestFirstEmptyExhaustive(t *testing.T) {
	for presence := 0; presence < 256; presence++ {
		got := FirstEmpty(uint8(presence))
		want := uint8(8)
		for s := uint8(0); s < 8; s++ {
			if uint8(presence)&(1<<s) == 0 {
				want = s
				break
			}
		}
		require.Equalf(t, want, got, "presence=%08b", presence)
	}
}
