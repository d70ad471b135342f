package clmm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newInitializedSM(t *testing.T) *ConfigurableCorePool {
	t.Helper()
	roadmap := NewRoadmap(nil)
	sm := NewConfigurableCorePool(usdcWethConfig(), roadmap, nil)
	require.NoError(t, sm.Initialize(hexToDecimal(t, "0x43efef20f018fdc58e7a5cf0416a")))
	return sm
}

func TestStateMachineSnapshotRecoverRoundTrip(t *testing.T) {
	sm := newInitializedSM(t)
	minTick, maxTick := MinTick/60*60, MaxTick/60*60

	_, _, err := sm.Mint("user", minTick, maxTick, decimal.NewFromInt(10_860_507_277_202))
	require.NoError(t, err)

	snapshotId := sm.TakeSnapshot("s")
	liquidityAtSnapshot := sm.Pool().Liquidity

	_, _, err = sm.Mint("user", minTick, maxTick, decimal.NewFromInt(500))
	require.NoError(t, err)
	_, _, err = sm.Swap(true, decimal.NewFromInt(1_000_000), MinSqrtRatio.Add(ONE))
	require.NoError(t, err)

	require.NoError(t, sm.Recover(snapshotId))
	require.True(t, liquidityAtSnapshot.Equal(sm.Pool().Liquidity))
	require.Equal(t, snapshotId, sm.Id)
}

func TestStateMachineForkDiverges(t *testing.T) {
	sm := newInitializedSM(t)
	minTick, maxTick := MinTick/60*60, MaxTick/60*60
	_, _, err := sm.Mint("user", minTick, maxTick, decimal.NewFromInt(10_860_507_277_202))
	require.NoError(t, err)

	fork := sm.Fork()
	tickBefore := sm.Pool().TickCurrent

	_, _, err = sm.Swap(true, decimal.NewFromInt(1_000_000), MinSqrtRatio.Add(ONE))
	require.NoError(t, err)

	require.NotEqual(t, sm.Pool().TickCurrent, fork.Pool().TickCurrent)
	require.Equal(t, tickBefore, fork.Pool().TickCurrent)
}

func TestStateMachineStepBackRestoresPriorState(t *testing.T) {
	sm := newInitializedSM(t)
	minTick, maxTick := MinTick/60*60, MaxTick/60*60

	preMintLiquidity := sm.Pool().Liquidity
	_, _, err := sm.Mint("user", minTick, maxTick, decimal.NewFromInt(10_860_507_277_202))
	require.NoError(t, err)
	require.False(t, sm.Pool().Liquidity.Equal(preMintLiquidity))

	require.NoError(t, sm.StepBack())
	require.True(t, sm.Pool().Liquidity.Equal(preMintLiquidity))
}

func TestStateMachineStepBackAtRootFails(t *testing.T) {
	roadmap := NewRoadmap(nil)
	sm := NewConfigurableCorePool(usdcWethConfig(), roadmap, nil)
	err := sm.StepBack()
	require.ErrorIs(t, err, &PoolError{Kind: ErrKindNoTransition})
}

func TestStateMachineQuerySwapDoesNotMutate(t *testing.T) {
	sm := newInitializedSM(t)
	minTick, maxTick := MinTick/60*60, MaxTick/60*60
	_, _, err := sm.Mint("user", minTick, maxTick, decimal.NewFromInt(10_860_507_277_202))
	require.NoError(t, err)

	priceBefore := sm.Pool().SqrtPriceX96
	_, _, err = sm.QuerySwap(true, decimal.NewFromInt(1_000_000), MinSqrtRatio.Add(ONE))
	require.NoError(t, err)
	require.True(t, sm.Pool().SqrtPriceX96.Equal(priceBefore))
}

func TestStateMachinePostProcessorRollback(t *testing.T) {
	sm := newInitializedSM(t)
	minTick, maxTick := MinTick/60*60, MaxTick/60*60

	preMintLiquidity := sm.Pool().Liquidity
	sm.UpdatePostProcessor(func(*ConfigurableCorePool, *Transition) error {
		return newErr(ErrKindPostProcessorFail, "reject everything")
	})

	_, _, err := sm.Mint("user", minTick, maxTick, decimal.NewFromInt(10_860_507_277_202))
	require.ErrorIs(t, err, &PoolError{Kind: ErrKindPostProcessorFail})
	require.True(t, sm.Pool().Liquidity.Equal(preMintLiquidity))
}

func TestStateMachineIdChangesOnEveryMutation(t *testing.T) {
	sm := newInitializedSM(t)
	idAfterInit := sm.Id

	minTick, maxTick := MinTick/60*60, MaxTick/60*60
	_, _, err := sm.Mint("user", minTick, maxTick, decimal.NewFromInt(10_860_507_277_202))
	require.NoError(t, err)

	require.NotEqual(t, idAfterInit, sm.Id)
}
