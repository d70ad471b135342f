package clmm

import (
	"math/big"

	"github.com/daoleno/uniswapv3-sdk/constants"
	"github.com/shopspring/decimal"
)

// FeeAmount mirrors the teacher's alias over the sdk's fee-tier type so pool
// configs can be expressed without importing the sdk package directly.
type FeeAmount = constants.FeeAmount

const (
	FeeLow    FeeAmount = 500
	FeeMedium FeeAmount = 3000
	FeeHigh   FeeAmount = 10000

	// MinTick and MaxTick bound the domain of TickMath's bijection.
	MinTick = -887272
	MaxTick = 887272
)

var (
	ZERO = decimal.Zero
	ONE  = decimal.NewFromInt(1)

	// Q128 is 2^128, the fixed-point base fee-growth accumulators are
	// expressed in.
	Q128 = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 128), 0)

	// MinSqrtRatio and MaxSqrtRatio are the inclusive/exclusive bounds a
	// sqrtPriceX96 must lie within; they correspond to MinTick and MaxTick.
	MinSqrtRatio = decimal.NewFromInt(4295128739)
	MaxSqrtRatio = decimalFromString("1461446703485210103287273052203988822378723970342")
)

func decimalFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// feeDenominator is 100% expressed in the pips the protocol charges fees in.
var feeDenominator = decimal.NewFromInt(1_000_000)

// TickSpacingToMaxLiquidityPerTick derives the liquidityGross ceiling a
// single tick may carry, given the pool's tick spacing: the number of
// initializable ticks divides u128's max evenly across them.
func TickSpacingToMaxLiquidityPerTick(tickSpacing int) decimal.Decimal {
	minTickAligned := MinTick / tickSpacing * tickSpacing
	maxTickAligned := MaxTick / tickSpacing * tickSpacing
	numTicks := int64((maxTickAligned-minTickAligned)/tickSpacing) + 1
	return maxUint128.Div(decimal.NewFromInt(numTicks)).Truncate(0)
}

var maxUint128 = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 128), 0).Sub(decimal.NewFromInt(1))
