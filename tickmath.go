package clmm

import (
	"github.com/daoleno/uniswapv3-sdk/utils"
	"github.com/shopspring/decimal"
)

// GetSqrtRatioAtTick returns floor(1.0001^(tick/2) * 2^96), the Q64.96
// sqrt price at the given tick. It is the package's one local wrapper
// around the sdk's bit-exact implementation, converting at the
// decimal.Decimal/big.Int boundary the way pool.go's swap loop already does
// for utils.GetSqrtRatioAtTick.
func GetSqrtRatioAtTick(tick int) (decimal.Decimal, error) {
	if tick < MinTick || tick > MaxTick {
		return ZERO, newErr(ErrKindTickOutOfRange, "tick out of [MinTick, MaxTick]")
	}
	bi, err := utils.GetSqrtRatioAtTick(tick)
	if err != nil {
		return ZERO, wrapErr(ErrKindTickOutOfRange, "GetSqrtRatioAtTick", err)
	}
	return decimal.NewFromBigInt(bi, 0), nil
}

// GetTickAtSqrtRatio returns the greatest tick whose sqrt ratio is less
// than or equal to sqrtPriceX96.
func GetTickAtSqrtRatio(sqrtPriceX96 decimal.Decimal) (int, error) {
	tick, err := utils.GetTickAtSqrtRatio(sqrtPriceX96.BigInt())
	if err != nil {
		return 0, wrapErr(ErrKindTickOutOfRange, "GetTickAtSqrtRatio", err)
	}
	return tick, nil
}

// GetAmount0Delta returns the signed amount of token0 a liquidityDelta
// change over [sqrtRatioLower, sqrtRatioUpper] requires, rounding away from
// zero on the side that favors the pool when liquidityDelta is being added,
// and toward zero when it is being removed — the convention _modifyPosition
// relies on (spec §4.E step 4: roundUp = liquidityDelta > 0).
func GetAmount0Delta(sqrtRatioLower, sqrtRatioUpper decimal.Decimal, liquidityDelta decimal.Decimal) (decimal.Decimal, error) {
	if sqrtRatioLower.GreaterThan(sqrtRatioUpper) {
		sqrtRatioLower, sqrtRatioUpper = sqrtRatioUpper, sqrtRatioLower
	}
	roundUp := liquidityDelta.Sign() > 0
	absDelta := liquidityDelta.Abs()
	bi, err := utils.GetAmount0Delta(sqrtRatioLower.BigInt(), sqrtRatioUpper.BigInt(), absDelta.BigInt(), roundUp)
	if err != nil {
		return ZERO, wrapErr(ErrKindOverflow, "GetAmount0Delta", err)
	}
	amount := decimal.NewFromBigInt(bi, 0)
	if liquidityDelta.Sign() < 0 {
		return amount.Neg(), nil
	}
	return amount, nil
}

// GetAmount1Delta is GetAmount0Delta's token1 counterpart.
func GetAmount1Delta(sqrtRatioLower, sqrtRatioUpper decimal.Decimal, liquidityDelta decimal.Decimal) (decimal.Decimal, error) {
	if sqrtRatioLower.GreaterThan(sqrtRatioUpper) {
		sqrtRatioLower, sqrtRatioUpper = sqrtRatioUpper, sqrtRatioLower
	}
	roundUp := liquidityDelta.Sign() > 0
	absDelta := liquidityDelta.Abs()
	bi, err := utils.GetAmount1Delta(sqrtRatioLower.BigInt(), sqrtRatioUpper.BigInt(), absDelta.BigInt(), roundUp)
	if err != nil {
		return ZERO, wrapErr(ErrKindOverflow, "GetAmount1Delta", err)
	}
	amount := decimal.NewFromBigInt(bi, 0)
	if liquidityDelta.Sign() < 0 {
		return amount.Neg(), nil
	}
	return amount, nil
}
