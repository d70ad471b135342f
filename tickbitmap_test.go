package clmm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTickBitmapFlipAndNextInitialized(t *testing.T) {
	bm := NewTickBitmap()
	tickSpacing := 60

	require.NoError(t, bm.FlipTick(120, tickSpacing))
	require.NoError(t, bm.FlipTick(-60, tickSpacing))

	// -60 compresses to -1, which lives in word -1; a search from tick 0
	// stays in word 0 and stops at that word's lowest tick, uninitialized.
	next, initialized := bm.NextInitializedTickWithinOneWord(0, tickSpacing, true)
	require.False(t, initialized)
	require.Equal(t, 0, next)

	next, initialized = bm.NextInitializedTickWithinOneWord(0, tickSpacing, false)
	require.True(t, initialized)
	require.Equal(t, 120, next)
}

func TestTickBitmapFlipMisalignedFails(t *testing.T) {
	bm := NewTickBitmap()
	err := bm.FlipTick(61, 60)
	require.ErrorIs(t, err, &PoolError{Kind: ErrKindTickMisaligned})
}

func TestTickBitmapCloneIsIndependent(t *testing.T) {
	bm := NewTickBitmap()
	require.NoError(t, bm.FlipTick(60, 60))

	clone := bm.Clone()
	require.NoError(t, clone.FlipTick(120, 60))

	_, originalHas120 := bm.NextInitializedTickWithinOneWord(60, 60, false)
	require.False(t, originalHas120)
}
