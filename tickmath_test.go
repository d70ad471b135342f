package clmm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSqrtRatioAtTickOutOfRange(t *testing.T) {
	_, err := GetSqrtRatioAtTick(MaxTick + 1)
	require.ErrorIs(t, err, &PoolError{Kind: ErrKindTickOutOfRange})

	_, err = GetSqrtRatioAtTick(MinTick - 1)
	require.ErrorIs(t, err, &PoolError{Kind: ErrKindTickOutOfRange})
}

func TestTickMathRoundTrip(t *testing.T) {
	// MaxTick's sqrt ratio is MaxSqrtRatio, the exclusive upper bound
	// GetTickAtSqrtRatio rejects, so the highest tick that round-trips is
	// MaxTick-1.
	for _, tick := range []int{0, 1, -1, 100, -100, 195285, MinTick, MaxTick - 1} {
		sqrtP, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)

		recovered, err := GetTickAtSqrtRatio(sqrtP)
		require.NoError(t, err)
		require.Equal(t, tick, recovered, "tick %d should round-trip through its sqrt ratio", tick)
	}
}

func TestGetAmount0DeltaSign(t *testing.T) {
	lower, err := GetSqrtRatioAtTick(-60)
	require.NoError(t, err)
	upper, err := GetSqrtRatioAtTick(60)
	require.NoError(t, err)

	positive, err := GetAmount0Delta(lower, upper, ONE)
	require.NoError(t, err)
	require.True(t, positive.Sign() > 0)

	negative, err := GetAmount0Delta(lower, upper, ONE.Neg())
	require.NoError(t, err)
	require.True(t, negative.Sign() < 0)
}

func TestGetAmount1DeltaSign(t *testing.T) {
	lower, err := GetSqrtRatioAtTick(-60)
	require.NoError(t, err)
	upper, err := GetSqrtRatioAtTick(60)
	require.NoError(t, err)

	positive, err := GetAmount1Delta(lower, upper, ONE)
	require.NoError(t, err)
	require.True(t, positive.Sign() > 0)
}
