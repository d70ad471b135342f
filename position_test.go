package clmm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPositionInfoUpdateAccruesFees(t *testing.T) {
	pos := NewPositionInfo()
	require.NoError(t, pos.Update(decimal.NewFromInt(1000), ZERO, ZERO))
	require.True(t, decimal.NewFromInt(1000).Equal(pos.Liquidity))

	// One full Q128 unit of growth per unit of liquidity since the last
	// touch credits tokensOwed0 with exactly the liquidity amount.
	require.NoError(t, pos.Update(ZERO, Q128, ZERO))
	require.True(t, decimal.NewFromInt(1000).Equal(pos.TokensOwed0))
	require.True(t, pos.TokensOwed1.IsZero())
}

func TestPositionInfoUpdateZeroDeltaOnEmptyFails(t *testing.T) {
	pos := NewPositionInfo()
	err := pos.Update(ZERO, ZERO, ZERO)
	require.ErrorIs(t, err, &PoolError{Kind: ErrKindZeroLiquidity})
}

func TestPositionInfoCollectCapsAtOwed(t *testing.T) {
	pos := NewPositionInfo()
	pos.TokensOwed0 = decimal.NewFromInt(5)
	pos.TokensOwed1 = decimal.NewFromInt(10)

	amount0, amount1 := pos.Collect(decimal.NewFromInt(100), decimal.NewFromInt(3))
	require.True(t, decimal.NewFromInt(5).Equal(amount0))
	require.True(t, decimal.NewFromInt(3).Equal(amount1))
	require.True(t, pos.TokensOwed0.IsZero())
	require.True(t, decimal.NewFromInt(7).Equal(pos.TokensOwed1))
}

func TestPositionManagerGetOrInitIsIdempotent(t *testing.T) {
	pm := NewPositionManager()
	a := pm.GetPositionAndInitIfAbsent("owner", -60, 60)
	b := pm.GetPositionAndInitIfAbsent("owner", -60, 60)
	require.Same(t, a, b)
	require.Equal(t, 1, pm.Len())
}

func TestPositionManagerCloneIsIndependent(t *testing.T) {
	pm := NewPositionManager()
	pos := pm.GetPositionAndInitIfAbsent("owner", -60, 60)
	pos.Liquidity = decimal.NewFromInt(100)

	clone := pm.Clone()
	clonedPos := clone.GetPositionReadonly("owner", -60, 60)
	clonedPos.Liquidity = decimal.NewFromInt(999)

	require.True(t, decimal.NewFromInt(100).Equal(pos.Liquidity))
}
