package clmm

import "github.com/shopspring/decimal"

// PositionInfo is the per-owner, per-range accounting record _modifyPosition
// updates on every mint, burn, and collect, mirroring the bookkeeping the
// teacher's updatePosition keeps inline.
type PositionInfo struct {
	Liquidity                decimal.Decimal
	FeeGrowthInside0LastX128 decimal.Decimal
	FeeGrowthInside1LastX128 decimal.Decimal
	TokensOwed0              decimal.Decimal
	TokensOwed1              decimal.Decimal
}

// NewPositionInfo returns a zeroed position record.
func NewPositionInfo() *PositionInfo {
	return &PositionInfo{
		Liquidity:                ZERO,
		FeeGrowthInside0LastX128: ZERO,
		FeeGrowthInside1LastX128: ZERO,
		TokensOwed0:              ZERO,
		TokensOwed1:              ZERO,
	}
}

// Clone deep-copies the position; decimal.Decimal values are immutable so a
// shallow struct copy is sufficient.
func (p *PositionInfo) Clone() *PositionInfo {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Update folds accrued fees since the position was last touched into
// tokensOwed, then applies liquidityDelta, matching spec §4.D's position
// update contract:
//
//	tokensOwed += liquidityBefore * (feeGrowthInside - feeGrowthInsideLast) / Q128
//	liquidity = AddDelta(liquidity, liquidityDelta)
func (p *PositionInfo) Update(liquidityDelta decimal.Decimal, feeGrowthInside0X128, feeGrowthInside1X128 decimal.Decimal) error {
	var liquidityNext decimal.Decimal
	if liquidityDelta.IsZero() {
		if p.Liquidity.IsZero() {
			return newErr(ErrKindZeroLiquidity, "cannot poke a position with no liquidity")
		}
		liquidityNext = p.Liquidity
	} else {
		next, err := LiquidityAddDelta(p.Liquidity, liquidityDelta)
		if err != nil {
			return err
		}
		liquidityNext = next
	}

	owed0 := feeGrowthInside0X128.Sub(p.FeeGrowthInside0LastX128).Mul(p.Liquidity).Div(Q128).Truncate(0)
	owed1 := feeGrowthInside1X128.Sub(p.FeeGrowthInside1LastX128).Mul(p.Liquidity).Div(Q128).Truncate(0)

	p.FeeGrowthInside0LastX128 = feeGrowthInside0X128
	p.FeeGrowthInside1LastX128 = feeGrowthInside1X128
	if owed0.Sign() > 0 {
		p.TokensOwed0 = p.TokensOwed0.Add(owed0)
	}
	if owed1.Sign() > 0 {
		p.TokensOwed1 = p.TokensOwed1.Add(owed1)
	}
	p.Liquidity = liquidityNext
	return nil
}

// Collect withdraws up to (amount0Requested, amount1Requested) from
// tokensOwed, capping at what is actually owed.
func (p *PositionInfo) Collect(amount0Requested, amount1Requested decimal.Decimal) (amount0, amount1 decimal.Decimal) {
	amount0 = amount0Requested
	if amount0.GreaterThan(p.TokensOwed0) {
		amount0 = p.TokensOwed0
	}
	amount1 = amount1Requested
	if amount1.GreaterThan(p.TokensOwed1) {
		amount1 = p.TokensOwed1
	}
	p.TokensOwed0 = p.TokensOwed0.Sub(amount0)
	p.TokensOwed1 = p.TokensOwed1.Sub(amount1)
	return amount0, amount1
}
