package clmm

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// maxUint256 is the ceiling mulDiv results (and every other 256-bit
// quantity in this package) must fit under; exceeding it is an Overflow.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// MulDiv computes floor(a*b/denom) in full 256-bit precision, matching
// Solidity's FullMath.mulDiv. denom must be positive and the product must
// fit in 256 bits.
func MulDiv(a, b, denom decimal.Decimal) (decimal.Decimal, error) {
	if denom.Sign() <= 0 {
		return ZERO, newErr(ErrKindOverflow, "mulDiv: denominator must be positive")
	}
	product := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if product.CmpAbs(maxUint256) > 0 {
		return ZERO, newErr(ErrKindOverflow, "mulDiv: a*b overflows 256 bits")
	}
	quotient := new(big.Int).Div(product, denom.BigInt())
	return decimal.NewFromBigInt(quotient, 0), nil
}

// MulDivRoundingUp is MulDiv rounded toward positive infinity instead of
// toward zero.
func MulDivRoundingUp(a, b, denom decimal.Decimal) (decimal.Decimal, error) {
	if denom.Sign() <= 0 {
		return ZERO, newErr(ErrKindOverflow, "mulDivRoundingUp: denominator must be positive")
	}
	product := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if product.CmpAbs(maxUint256) > 0 {
		return ZERO, newErr(ErrKindOverflow, "mulDivRoundingUp: a*b overflows 256 bits")
	}
	quotient, rem := new(big.Int).QuoRem(product, denom.BigInt(), new(big.Int))
	if rem.Sign() != 0 {
		quotient.Add(quotient, big.NewInt(1))
	}
	return decimal.NewFromBigInt(quotient, 0), nil
}

// AddDelta applies a signed liquidity delta to an unsigned liquidity value,
// failing with LiquiditySubUnderflow/LiquidityAddOverflow rather than
// silently wrapping.
func AddDelta(x decimal.Decimal, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.Sign() < 0 {
		abs := delta.Neg()
		if x.LessThan(abs) {
			return ZERO, newErr(ErrKindLiquiditySub, "liquidity delta exceeds current liquidity")
		}
		return x.Sub(abs), nil
	}
	result := x.Add(delta)
	if result.GreaterThan(maxUint128) {
		return ZERO, newErr(ErrKindLiquidityAdd, "liquidity delta overflows u128")
	}
	return result, nil
}

// LiquidityAddDelta is the position-level counterpart of AddDelta; it is a
// distinct name (not an alias) because the teacher's position bookkeeping
// and the pool-level bookkeeping call into it from different files, but the
// arithmetic and failure modes are identical.
func LiquidityAddDelta(x decimal.Decimal, delta decimal.Decimal) (decimal.Decimal, error) {
	return AddDelta(x, delta)
}
