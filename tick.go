package clmm

import "github.com/shopspring/decimal"

// TickInfo is the per-tick accounting record the teacher's pool.go mutates
// in place whenever a position crosses or touches a tick: how much gross and
// net liquidity it carries, and the fee growth that had already accrued on
// the far side of it the last time it was crossed.
type TickInfo struct {
	Tick                   int
	LiquidityGross         decimal.Decimal
	LiquidityNet           decimal.Decimal
	FeeGrowthOutside0X128  decimal.Decimal
	FeeGrowthOutside1X128  decimal.Decimal
	Initialized            bool
}

// NewTickInfo returns a zeroed, uninitialized tick record.
func NewTickInfo(tick int) *TickInfo {
	return &TickInfo{
		Tick:                  tick,
		LiquidityGross:        ZERO,
		LiquidityNet:          ZERO,
		FeeGrowthOutside0X128: ZERO,
		FeeGrowthOutside1X128: ZERO,
	}
}

// Clone deep-copies the tick so a pool snapshot never aliases another's
// mutable state.
func (t *TickInfo) Clone() *TickInfo {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Update applies a liquidityDelta from a mint/burn touching this tick,
// returning whether the tick flipped from uninitialized to initialized or
// vice versa — the caller (pool.go's _modifyPosition) uses that to decide
// whether the tick bitmap needs flipping too. feeGrowthGlobal0/1X128 seed
// FeeGrowthOutside the first time a tick is initialized, matching the
// convention that a tick's outside growth, before it has ever been crossed,
// is defined to equal everything below tickCurrent.
func (t *TickInfo) Update(
	tickCurrent int,
	liquidityDelta decimal.Decimal,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 decimal.Decimal,
	upper bool,
	maxLiquidity decimal.Decimal,
) (flipped bool, err error) {
	liquidityGrossBefore := t.LiquidityGross
	liquidityGrossAfter, err := LiquidityAddDelta(liquidityGrossBefore, liquidityDelta)
	if err != nil {
		return false, err
	}
	if liquidityGrossAfter.GreaterThan(maxLiquidity) {
		return false, newErr(ErrKindMaxLiquidity, "liquidityGross exceeds maxLiquidityPerTick")
	}

	flipped = liquidityGrossAfter.IsZero() != liquidityGrossBefore.IsZero()

	if liquidityGrossBefore.IsZero() {
		if t.Tick <= tickCurrent {
			t.FeeGrowthOutside0X128 = feeGrowthGlobal0X128
			t.FeeGrowthOutside1X128 = feeGrowthGlobal1X128
		}
		t.Initialized = true
	}

	t.LiquidityGross = liquidityGrossAfter

	if upper {
		t.LiquidityNet = t.LiquidityNet.Sub(liquidityDelta)
	} else {
		t.LiquidityNet = t.LiquidityNet.Add(liquidityDelta)
	}

	return flipped, nil
}

// Cross flips a tick's outside fee-growth accumulators to the other side as
// price moves through it, and returns the signed liquidityNet the swap loop
// adds to (or subtracts from) the pool's active liquidity.
func (t *TickInfo) Cross(feeGrowthGlobal0X128, feeGrowthGlobal1X128 decimal.Decimal) decimal.Decimal {
	t.FeeGrowthOutside0X128 = feeGrowthGlobal0X128.Sub(t.FeeGrowthOutside0X128)
	t.FeeGrowthOutside1X128 = feeGrowthGlobal1X128.Sub(t.FeeGrowthOutside1X128)
	return t.LiquidityNet
}

// Clear resets a tick that has flipped back to zero liquidityGross, the way
// pool.go's modifyPosition drops bookkeeping for ticks no position touches
// anymore.
func (t *TickInfo) Clear() {
	t.LiquidityGross = ZERO
	t.LiquidityNet = ZERO
	t.FeeGrowthOutside0X128 = ZERO
	t.FeeGrowthOutside1X128 = ZERO
	t.Initialized = false
}

// getFeeGrowthInside computes the fee growth accrued within [tickLower,
// tickUpper] as of the current pool state, the quantity positions accrue
// tokensOwed against.
func getFeeGrowthInside(
	lower, upper *TickInfo,
	tickLower, tickUpper, tickCurrent int,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 decimal.Decimal,
) (feeGrowthInside0X128, feeGrowthInside1X128 decimal.Decimal) {
	var feeGrowthBelow0, feeGrowthBelow1 decimal.Decimal
	if tickCurrent >= tickLower {
		feeGrowthBelow0, feeGrowthBelow1 = lower.FeeGrowthOutside0X128, lower.FeeGrowthOutside1X128
	} else {
		feeGrowthBelow0 = feeGrowthGlobal0X128.Sub(lower.FeeGrowthOutside0X128)
		feeGrowthBelow1 = feeGrowthGlobal1X128.Sub(lower.FeeGrowthOutside1X128)
	}

	var feeGrowthAbove0, feeGrowthAbove1 decimal.Decimal
	if tickCurrent < tickUpper {
		feeGrowthAbove0, feeGrowthAbove1 = upper.FeeGrowthOutside0X128, upper.FeeGrowthOutside1X128
	} else {
		feeGrowthAbove0 = feeGrowthGlobal0X128.Sub(upper.FeeGrowthOutside0X128)
		feeGrowthAbove1 = feeGrowthGlobal1X128.Sub(upper.FeeGrowthOutside1X128)
	}

	feeGrowthInside0X128 = feeGrowthGlobal0X128.Sub(feeGrowthBelow0).Sub(feeGrowthAbove0)
	feeGrowthInside1X128 = feeGrowthGlobal1X128.Sub(feeGrowthBelow1).Sub(feeGrowthAbove1)
	return feeGrowthInside0X128, feeGrowthInside1X128
}
