package clmm

import (
	"github.com/daoleno/uniswapv3-sdk/utils"
	"github.com/shopspring/decimal"
)

// ComputeSwapStep advances a swap toward sqrtRatioTargetX96 by at most one
// tick's worth of liquidity, splitting amountRemaining between input consumed
// and fee charged the way the teacher's HandleSwap loop already does for
// utils.ComputeSwapStep. It returns the sqrt price reached, the amount of
// the input token consumed, the amount of the output token produced, and the
// fee taken out of the input amount.
func ComputeSwapStep(
	sqrtRatioCurrentX96 decimal.Decimal,
	sqrtRatioTargetX96 decimal.Decimal,
	liquidity decimal.Decimal,
	amountRemaining decimal.Decimal,
	feePips FeeAmount,
) (sqrtRatioNextX96, amountIn, amountOut, feeAmount decimal.Decimal, err error) {
	nextX96, in, out, fee, cerr := utils.ComputeSwapStep(
		sqrtRatioCurrentX96.BigInt(),
		sqrtRatioTargetX96.BigInt(),
		liquidity.BigInt(),
		amountRemaining.BigInt(),
		feePips,
	)
	if cerr != nil {
		return ZERO, ZERO, ZERO, ZERO, wrapErr(ErrKindOverflow, "ComputeSwapStep", cerr)
	}
	return decimal.NewFromBigInt(nextX96, 0),
		decimal.NewFromBigInt(in, 0),
		decimal.NewFromBigInt(out, 0),
		decimal.NewFromBigInt(fee, 0),
		nil
}
