package clmm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func freshReplaySM(t *testing.T) *ConfigurableCorePool {
	t.Helper()
	roadmap := NewRoadmap(nil)
	sm := NewConfigurableCorePool(usdcWethConfig(), roadmap, nil)
	require.NoError(t, sm.Initialize(hexToDecimal(t, "0x43efef20f018fdc58e7a5cf0416a")))
	minTick, maxTick := MinTick/60*60, MaxTick/60*60
	_, _, err := sm.Mint("lp", minTick, maxTick, decimal.NewFromInt(10_860_507_277_202))
	require.NoError(t, err)
	return sm
}

func TestReplayerApplySwapEventMatchesExactInAmount0(t *testing.T) {
	reference := freshReplaySM(t)
	amount0, amount1, err := reference.Swap(true, decimal.NewFromInt(1_000_000), MinSqrtRatio.Add(ONE))
	require.NoError(t, err)

	ev := SwapEvent{
		Id:           "swap-1",
		BlockNumber:  1,
		LogIndex:     0,
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: reference.Pool().SqrtPriceX96,
		Liquidity:    reference.Pool().Liquidity,
		Tick:         reference.Pool().TickCurrent,
	}

	replayTarget := freshReplaySM(t)
	replayer := NewReplayer(replayTarget)
	require.NoError(t, replayer.ApplySwapEvent(ev))

	require.True(t, replayTarget.Pool().SqrtPriceX96.Equal(reference.Pool().SqrtPriceX96))
	require.Equal(t, reference.Pool().TickCurrent, replayTarget.Pool().TickCurrent)
}

func TestReplayerApplySwapEventFailsOnUnresolvableEvent(t *testing.T) {
	sm := freshReplaySM(t)
	replayer := NewReplayer(sm)

	badEvent := SwapEvent{
		Id:           "bad",
		Amount0:      decimal.NewFromInt(1),
		Amount1:      decimal.NewFromInt(999_999_999), // cannot match any real dry-run result
		SqrtPriceX96: sm.Pool().SqrtPriceX96,
	}
	err := replayer.ApplySwapEvent(badEvent)
	require.Error(t, err)
}

func TestReplayerApplyLiquidityEventMint(t *testing.T) {
	probe := NewCorePool(usdcWethConfig())
	sqrtPriceX96 := hexToDecimal(t, "0x43efef20f018fdc58e7a5cf0416a")
	require.NoError(t, probe.Initialize(sqrtPriceX96))

	ev := LiquidityEvent{
		Id: "mint-1", Type: LiquidityEventMint,
		TickLower: 192180, TickUpper: 193380, Liquidity: decimal.NewFromInt(10_860_507_277_202),
	}
	amount0, amount1, err := probe.Mint("probe", ev.TickLower, ev.TickUpper, ev.Liquidity)
	require.NoError(t, err)
	ev.Amount0, ev.Amount1 = amount0, amount1

	roadmap := NewRoadmap(nil)
	sm := NewConfigurableCorePool(usdcWethConfig(), roadmap, nil)
	require.NoError(t, sm.Initialize(sqrtPriceX96))
	replayer := NewReplayer(sm)
	require.NoError(t, replayer.ApplyLiquidityEvent(ev))

	pos := sm.Pool().PositionManager.GetPositionReadonly("replay", ev.TickLower, ev.TickUpper)
	require.NotNil(t, pos)
	require.True(t, ev.Liquidity.Equal(pos.Liquidity))
}
