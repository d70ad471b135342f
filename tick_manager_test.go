package clmm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTickManagerSortedTicksIsDeterministic(t *testing.T) {
	tm := NewTickManager(60)
	for _, tick := range []int{600, -600, 0, 60, -60} {
		tm.GetTickAndInitIfAbsent(tick)
	}
	require.Equal(t, []int{-600, -60, 0, 60, 600}, tm.SortedTicks())
}

func TestTickManagerCloneIsIndependent(t *testing.T) {
	tm := NewTickManager(60)
	info := tm.GetTickAndInitIfAbsent(60)
	info.LiquidityGross = decimal.NewFromInt(100)

	clone := tm.Clone()
	clone.GetTick(60).LiquidityGross = decimal.NewFromInt(999)

	require.True(t, decimal.NewFromInt(100).Equal(tm.GetTick(60).LiquidityGross))
}

func TestTickManagerFeeGrowthInsideDefaultsToZeroOutsideBounds(t *testing.T) {
	tm := NewTickManager(60)
	inside0, inside1 := tm.GetFeeGrowthInside(-60, 60, 0, decimal.NewFromInt(100), decimal.NewFromInt(200))
	require.True(t, decimal.NewFromInt(100).Equal(inside0))
	require.True(t, decimal.NewFromInt(200).Equal(inside1))
}
