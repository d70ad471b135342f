package clmm

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PoolConfig is the immutable configuration a CorePool is created with,
// mirroring the teacher's NewPoolConfig but generalized off any one
// token-pair: tickSpacing and feePips are independent instead of hardcoded
// per fee tier.
type PoolConfig struct {
	Token0Symbol string
	Token1Symbol string
	FeePips      FeeAmount
	TickSpacing  int
}

// NewPoolConfig builds a PoolConfig. The maximum liquidity per tick is not
// stored; maxLiquidityPerTick derives it from TickSpacing when needed.
func NewPoolConfig(token0Symbol, token1Symbol string, feePips FeeAmount, tickSpacing int) PoolConfig {
	return PoolConfig{
		Token0Symbol: token0Symbol,
		Token1Symbol: token1Symbol,
		FeePips:      feePips,
		TickSpacing:  tickSpacing,
	}
}

func (c PoolConfig) maxLiquidityPerTick() decimal.Decimal {
	return TickSpacingToMaxLiquidityPerTick(c.TickSpacing)
}

// CorePool is the pure engine (component E): state and the five public
// operations, with no transition log, no fork/snapshot bookkeeping, and no
// persistence — all of that lives a layer up in ConfigurableCorePool. It is
// adapted from the teacher's CorePool, generalized from a gorm-persisted,
// single-tier pool to the spec's tickSpacing/feePips-parameterized one.
type CorePool struct {
	Config PoolConfig

	SqrtPriceX96         decimal.Decimal
	TickCurrent          int
	Liquidity            decimal.Decimal
	FeeGrowthGlobal0X128 decimal.Decimal
	FeeGrowthGlobal1X128 decimal.Decimal

	TickManager     *TickManager
	PositionManager *PositionManager
}

// NewCorePool returns an uninitialized pool (SqrtPriceX96 == 0) ready for
// Initialize.
func NewCorePool(config PoolConfig) *CorePool {
	return &CorePool{
		Config:               config,
		SqrtPriceX96:         ZERO,
		TickCurrent:          0,
		Liquidity:            ZERO,
		FeeGrowthGlobal0X128: ZERO,
		FeeGrowthGlobal1X128: ZERO,
		TickManager:          NewTickManager(config.TickSpacing),
		PositionManager:      NewPositionManager(),
	}
}

// Clone deep-copies every field, including the tick and position tables, so
// forks and dry-run clones never alias the original's mutable state.
func (p *CorePool) Clone() *CorePool {
	return &CorePool{
		Config:               p.Config,
		SqrtPriceX96:         p.SqrtPriceX96,
		TickCurrent:          p.TickCurrent,
		Liquidity:            p.Liquidity,
		FeeGrowthGlobal0X128: p.FeeGrowthGlobal0X128,
		FeeGrowthGlobal1X128: p.FeeGrowthGlobal1X128,
		TickManager:          p.TickManager.Clone(),
		PositionManager:      p.PositionManager.Clone(),
	}
}

// IsInitialized reports whether Initialize has ever succeeded.
func (p *CorePool) IsInitialized() bool {
	return !p.SqrtPriceX96.IsZero()
}

// Initialize sets the pool's starting price and derives TickCurrent from it.
// Liquidity stays zero; this is the only operation legal before any
// position exists.
func (p *CorePool) Initialize(sqrtPriceX96 decimal.Decimal) error {
	if p.IsInitialized() {
		return newErr(ErrKindAlreadyInit, "pool already initialized")
	}
	if sqrtPriceX96.LessThanOrEqual(ZERO) {
		return newErr(ErrKindBadPriceLimit, "initialize: sqrtPriceX96 must be positive")
	}
	tick, err := GetTickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return err
	}
	p.SqrtPriceX96 = sqrtPriceX96
	p.TickCurrent = tick
	return nil
}

// Mint adds liquidity to [tickLower, tickUpper] owned by owner, returning
// the token amounts the caller must supply.
func (p *CorePool) Mint(owner string, tickLower, tickUpper int, amount decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	if !p.IsInitialized() {
		return ZERO, ZERO, newErr(ErrKindNotInitialized, "mint: pool not initialized")
	}
	if amount.Sign() <= 0 {
		return ZERO, ZERO, newErr(ErrKindZeroLiquidity, "mint: amount must be positive")
	}
	return p.modifyPosition(owner, tickLower, tickUpper, amount)
}

// Burn removes liquidity from [tickLower, tickUpper], crediting the
// resulting token amounts to the position's tokensOwed so a later Collect
// can withdraw them.
func (p *CorePool) Burn(owner string, tickLower, tickUpper int, amount decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	if !p.IsInitialized() {
		return ZERO, ZERO, newErr(ErrKindNotInitialized, "burn: pool not initialized")
	}
	if amount.Sign() <= 0 {
		return ZERO, ZERO, newErr(ErrKindZeroLiquidity, "burn: amount must be positive")
	}
	amount0, amount1, err = p.modifyPosition(owner, tickLower, tickUpper, amount.Neg())
	if err != nil {
		return ZERO, ZERO, err
	}
	negAmount0, negAmount1 := amount0.Neg(), amount1.Neg()
	if negAmount0.Sign() > 0 || negAmount1.Sign() > 0 {
		pos := p.PositionManager.GetPositionAndInitIfAbsent(owner, tickLower, tickUpper)
		pos.TokensOwed0 = pos.TokensOwed0.Add(negAmount0)
		pos.TokensOwed1 = pos.TokensOwed1.Add(negAmount1)
	}
	return negAmount0, negAmount1, nil
}

// Collect withdraws up to (amount0Requested, amount1Requested) of a
// position's accrued tokensOwed.
func (p *CorePool) Collect(owner string, tickLower, tickUpper int, amount0Requested, amount1Requested decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	pos := p.PositionManager.GetPositionReadonly(owner, tickLower, tickUpper)
	if pos == nil {
		return ZERO, ZERO, nil
	}
	amount0, amount1 = pos.Collect(amount0Requested, amount1Requested)
	return amount0, amount1, nil
}

// modifyPosition implements the spec's _modifyPosition contract shared by
// Mint and Burn: validate the range, update both boundary ticks, fold
// accrued fees into the position, and compute the token amounts the
// liquidityDelta requires over the range relative to tickCurrent.
func (p *CorePool) modifyPosition(owner string, tickLower, tickUpper int, liquidityDelta decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	if err := p.checkTicks(tickLower, tickUpper); err != nil {
		return ZERO, ZERO, err
	}

	flippedLower, err := p.updateTick(tickLower, liquidityDelta, false)
	if err != nil {
		return ZERO, ZERO, err
	}
	flippedUpper, err := p.updateTick(tickUpper, liquidityDelta, true)
	if err != nil {
		if flippedLower {
			p.TickManager.Clear(tickLower)
		}
		return ZERO, ZERO, err
	}

	feeGrowthInside0X128, feeGrowthInside1X128 := p.TickManager.GetFeeGrowthInside(
		tickLower, tickUpper, p.TickCurrent, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128,
	)

	pos := p.PositionManager.GetPositionAndInitIfAbsent(owner, tickLower, tickUpper)
	if err := pos.Update(liquidityDelta, feeGrowthInside0X128, feeGrowthInside1X128); err != nil {
		return ZERO, ZERO, err
	}

	switch {
	case p.TickCurrent < tickLower:
		amount0, err = GetAmount0Delta(mustSqrtRatio(tickLower), mustSqrtRatio(tickUpper), liquidityDelta)
		if err != nil {
			return ZERO, ZERO, err
		}
	case p.TickCurrent < tickUpper:
		amount0, err = GetAmount0Delta(p.SqrtPriceX96, mustSqrtRatio(tickUpper), liquidityDelta)
		if err != nil {
			return ZERO, ZERO, err
		}
		amount1, err = GetAmount1Delta(mustSqrtRatio(tickLower), p.SqrtPriceX96, liquidityDelta)
		if err != nil {
			return ZERO, ZERO, err
		}
		p.Liquidity, err = AddDelta(p.Liquidity, liquidityDelta)
		if err != nil {
			return ZERO, ZERO, err
		}
	default:
		amount1, err = GetAmount1Delta(mustSqrtRatio(tickLower), mustSqrtRatio(tickUpper), liquidityDelta)
		if err != nil {
			return ZERO, ZERO, err
		}
	}

	if liquidityDelta.Sign() < 0 {
		if flippedLower {
			p.TickManager.Clear(tickLower)
		}
		if flippedUpper {
			p.TickManager.Clear(tickUpper)
		}
	}

	return amount0, amount1, nil
}

func mustSqrtRatio(tick int) decimal.Decimal {
	d, err := GetSqrtRatioAtTick(tick)
	if err != nil {
		// tick has already passed checkTicks, so this can only indicate a
		// logic error in the caller, not bad input.
		panic(err)
	}
	return d
}

func (p *CorePool) updateTick(tick int, liquidityDelta decimal.Decimal, upper bool) (flipped bool, err error) {
	info := p.TickManager.GetTickAndInitIfAbsent(tick)
	flipped, err = info.Update(p.TickCurrent, liquidityDelta, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128, upper, p.Config.maxLiquidityPerTick())
	if err != nil {
		return false, err
	}
	if flipped {
		if ferr := p.TickManager.FlipTick(tick); ferr != nil {
			return false, ferr
		}
	}
	return flipped, nil
}

func (p *CorePool) checkTicks(tickLower, tickUpper int) error {
	if tickLower >= tickUpper {
		return newErr(ErrKindTickOrder, "tickLower must be less than tickUpper")
	}
	if tickLower < MinTick || tickUpper > MaxTick {
		return newErr(ErrKindTickOutOfRange, "tick range outside [MinTick, MaxTick]")
	}
	if tickLower%p.Config.TickSpacing != 0 || tickUpper%p.Config.TickSpacing != 0 {
		return newErr(ErrKindTickMisaligned, "ticks must be multiples of tickSpacing")
	}
	return nil
}

// swapState is the mutable accumulator the step loop advances, mirroring
// the teacher's HandleSwap inline struct of the same shape.
type swapState struct {
	amountSpecifiedRemaining decimal.Decimal
	amountCalculated         decimal.Decimal
	sqrtPriceX96             decimal.Decimal
	tick                     int
	liquidity                decimal.Decimal
	feeGrowthGlobalX128      decimal.Decimal
}

// Swap drives the step loop described in spec §4.E: it consumes
// amountSpecified (positive = exact input, negative = exact output) trading
// token0 for token1 when zeroForOne, stopping at sqrtPriceLimitX96 or when
// the amount is exhausted, whichever comes first.
func (p *CorePool) Swap(zeroForOne bool, amountSpecified decimal.Decimal, sqrtPriceLimitX96 decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	if !p.IsInitialized() {
		return ZERO, ZERO, newErr(ErrKindNotInitialized, "swap: pool not initialized")
	}
	if amountSpecified.IsZero() {
		return ZERO, ZERO, nil
	}

	if sqrtPriceLimitX96.Equal(p.SqrtPriceX96) {
		return ZERO, ZERO, nil
	}

	if zeroForOne {
		if sqrtPriceLimitX96.GreaterThanOrEqual(p.SqrtPriceX96) || sqrtPriceLimitX96.LessThanOrEqual(MinSqrtRatio) {
			return ZERO, ZERO, newErr(ErrKindBadPriceLimit, "swap: price limit on wrong side of current price or out of range")
		}
	} else {
		if sqrtPriceLimitX96.LessThanOrEqual(p.SqrtPriceX96) || sqrtPriceLimitX96.GreaterThanOrEqual(MaxSqrtRatio) {
			return ZERO, ZERO, newErr(ErrKindBadPriceLimit, "swap: price limit on wrong side of current price or out of range")
		}
	}

	exactInput :=amountSpecified.Sign() > 0

	state := &swapState{
		amountSpecifiedRemaining: amountSpecified,
		amountCalculated:         ZERO,
		sqrtPriceX96:             p.SqrtPriceX96,
		tick:                     p.TickCurrent,
		liquidity:                p.Liquidity,
	}
	if zeroForOne {
		state.feeGrowthGlobalX128 = p.FeeGrowthGlobal0X128
	} else {
		state.feeGrowthGlobalX128 = p.FeeGrowthGlobal1X128
	}

	const maxLoopIterations = 1000
	for i := 0; i < maxLoopIterations && !state.amountSpecifiedRemaining.IsZero() && !state.sqrtPriceX96.Equal(sqrtPriceLimitX96); i++ {
		stepStart := state.sqrtPriceX96

		searchFrom := state.tick
		if !zeroForOne {
			searchFrom++
		}
		nextTick, initialized := p.TickManager.GetNextInitializedTick(searchFrom, zeroForOne)
		if nextTick < MinTick {
			nextTick = MinTick
		} else if nextTick > MaxTick {
			nextTick = MaxTick
		}

		sqrtPriceNextTick, err := GetSqrtRatioAtTick(nextTick)
		if err != nil {
			return ZERO, ZERO, err
		}

		var sqrtPriceTarget decimal.Decimal
		if zeroForOne {
			sqrtPriceTarget = decimal.Max(sqrtPriceLimitX96, sqrtPriceNextTick)
		} else {
			sqrtPriceTarget = decimal.Min(sqrtPriceLimitX96, sqrtPriceNextTick)
		}

		nextSqrtPrice, amtIn, amtOut, fee, err := ComputeSwapStep(
			stepStart, sqrtPriceTarget, state.liquidity, state.amountSpecifiedRemaining, p.Config.FeePips,
		)
		if err != nil {
			return ZERO, ZERO, err
		}
		state.sqrtPriceX96 = nextSqrtPrice

		if exactInput {
			state.amountSpecifiedRemaining = state.amountSpecifiedRemaining.Sub(amtIn.Add(fee))
			state.amountCalculated = state.amountCalculated.Sub(amtOut)
		} else {
			state.amountSpecifiedRemaining = state.amountSpecifiedRemaining.Add(amtOut)
			state.amountCalculated = state.amountCalculated.Add(amtIn.Add(fee))
		}

		if state.liquidity.Sign() > 0 {
			feeGrowthDelta, err := MulDiv(fee, Q128, state.liquidity)
			if err != nil {
				return ZERO, ZERO, err
			}
			state.feeGrowthGlobalX128 = state.feeGrowthGlobalX128.Add(feeGrowthDelta)
		}

		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			logrus.WithFields(logrus.Fields{
				"tick": state.tick, "sqrtPriceX96": state.sqrtPriceX96.String(), "remaining": state.amountSpecifiedRemaining.String(),
			}).Trace("swap step")
		}

		if state.sqrtPriceX96.Equal(sqrtPriceNextTick) {
			if initialized {
				tickInfo := p.TickManager.GetTick(nextTick)
				var feeGrowthGlobal0, feeGrowthGlobal1 decimal.Decimal
				if zeroForOne {
					feeGrowthGlobal0, feeGrowthGlobal1 = state.feeGrowthGlobalX128, p.FeeGrowthGlobal1X128
				} else {
					feeGrowthGlobal0, feeGrowthGlobal1 = p.FeeGrowthGlobal0X128, state.feeGrowthGlobalX128
				}
				liquidityNet := tickInfo.Cross(feeGrowthGlobal0, feeGrowthGlobal1)
				if zeroForOne {
					liquidityNet = liquidityNet.Neg()
				}
				state.liquidity, err = AddDelta(state.liquidity, liquidityNet)
				if err != nil {
					return ZERO, ZERO, err
				}
			}
			if zeroForOne {
				state.tick = nextTick - 1
			} else {
				state.tick = nextTick
			}
		} else if !state.sqrtPriceX96.Equal(stepStart) {
			state.tick, err = GetTickAtSqrtRatio(state.sqrtPriceX96)
			if err != nil {
				return ZERO, ZERO, err
			}
		}
	}

	p.SqrtPriceX96 = state.sqrtPriceX96
	p.TickCurrent = state.tick
	p.Liquidity = state.liquidity
	if zeroForOne {
		p.FeeGrowthGlobal0X128 = state.feeGrowthGlobalX128
	} else {
		p.FeeGrowthGlobal1X128 = state.feeGrowthGlobalX128
	}

	if zeroForOne == exactInput {
		amount0 = amountSpecified.Sub(state.amountSpecifiedRemaining)
		amount1 = state.amountCalculated
	} else {
		amount1 = amountSpecified.Sub(state.amountSpecifiedRemaining)
		amount0 = state.amountCalculated
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"zeroForOne": zeroForOne, "amount0": amount0.String(), "amount1": amount1.String(),
		}).Debug("swap complete")
	}

	return amount0, amount1, nil
}
