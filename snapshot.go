package clmm

import (
	"crypto/sha256"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// tickSnapshot and positionSnapshot are the by-value rows a Snapshot encodes
// its tick and position tables as, sorted by key so two snapshots of
// identical state encode identically regardless of Go's randomized map
// iteration — the canonical encoding spec §9 requires.
type tickSnapshot struct {
	Tick                  int
	LiquidityGross        decimal.Decimal
	LiquidityNet          decimal.Decimal
	FeeGrowthOutside0X128 decimal.Decimal
	FeeGrowthOutside1X128 decimal.Decimal
}

type positionSnapshot struct {
	Owner                    string
	TickLower                int
	TickUpper                int
	Liquidity                decimal.Decimal
	FeeGrowthInside0LastX128 decimal.Decimal
	FeeGrowthInside1LastX128 decimal.Decimal
	TokensOwed0              decimal.Decimal
	TokensOwed1              decimal.Decimal
}

// Snapshot is a durable, by-value copy of a CorePool's entire state (spec
// §3/§9): it shares no mutable structure with the live pool it was taken
// from, and its tick/position tables are encoded as sorted slices rather
// than maps so persistence and hashing are both deterministic.
type Snapshot struct {
	Id          uuid.UUID
	Description string
	Config      PoolConfig

	SqrtPriceX96         decimal.Decimal
	TickCurrent          int
	Liquidity            decimal.Decimal
	FeeGrowthGlobal0X128 decimal.Decimal
	FeeGrowthGlobal1X128 decimal.Decimal

	Ticks     []tickSnapshot
	Positions []positionSnapshot

	CreatedAt time.Time
}

// takeSnapshot deep-copies pool's entire observable state into a new
// Snapshot, assigning it a fresh id.
func takeSnapshot(pool *CorePool, description string) *Snapshot {
	ticks := make([]tickSnapshot, 0, pool.TickManager.Len())
	for _, t := range pool.TickManager.SortedTicks() {
		info := pool.TickManager.GetTick(t)
		ticks = append(ticks, tickSnapshot{
			Tick:                  t,
			LiquidityGross:        info.LiquidityGross,
			LiquidityNet:          info.LiquidityNet,
			FeeGrowthOutside0X128: info.FeeGrowthOutside0X128,
			FeeGrowthOutside1X128: info.FeeGrowthOutside1X128,
		})
	}

	positions := make([]positionSnapshot, 0, pool.PositionManager.Len())
	for _, key := range pool.PositionManager.SortedKeys() {
		info := pool.PositionManager.GetPositionReadonly(key.Owner, key.TickLower, key.TickUpper)
		positions = append(positions, positionSnapshot{
			Owner:                    key.Owner,
			TickLower:                key.TickLower,
			TickUpper:                key.TickUpper,
			Liquidity:                info.Liquidity,
			FeeGrowthInside0LastX128: info.FeeGrowthInside0LastX128,
			FeeGrowthInside1LastX128: info.FeeGrowthInside1LastX128,
			TokensOwed0:              info.TokensOwed0,
			TokensOwed1:              info.TokensOwed1,
		})
	}

	return &Snapshot{
		Id:                   uuid.New(),
		Description:          description,
		Config:               pool.Config,
		SqrtPriceX96:         pool.SqrtPriceX96,
		TickCurrent:          pool.TickCurrent,
		Liquidity:            pool.Liquidity,
		FeeGrowthGlobal0X128: pool.FeeGrowthGlobal0X128,
		FeeGrowthGlobal1X128: pool.FeeGrowthGlobal1X128,
		Ticks:                ticks,
		Positions:            positions,
		CreatedAt:            time.Now(),
	}
}

// decimalToWord converts a scale-0 decimal into 33 bytes: a sign byte (1 for
// negative) followed by the 32-byte big-endian magnitude via holiman/uint256,
// the fixed-width word every Checksum input is reduced to before hashing.
// Negative values (liquidityNet on a tick where positions end, i.e. their
// upper tick) are encoded by their absolute value, since uint256 has no sign.
func decimalToWord(d decimal.Decimal) [33]byte {
	var out [33]byte
	v := d
	if v.Sign() < 0 {
		out[0] = 1
		v = v.Neg()
	}
	word, overflow := uint256.FromBig(v.BigInt())
	if overflow {
		// Never reachable for in-range pool state (all values stay under
		// 2**256), but fail loudly rather than silently truncate.
		panic("clmm: decimal value exceeds uint256 range")
	}
	b := word.Bytes32()
	copy(out[1:], b[:])
	return out
}

// Checksum returns a canonical, cross-language-comparable digest of the
// snapshot's decimal fields: each reduced to its fixed-width uint256 word
// (sign-prefixed) in a fixed field order, then hashed. Integer and string
// fields (TickCurrent, tick indices, position owners, the pool config) are
// not hashed. Two snapshots with identical decimal state always produce the
// same checksum regardless of which process or platform produced them,
// which is the property the persistent store uses to detect on-disk
// corruption of those fields.
func (s *Snapshot) Checksum() [32]byte {
	h := sha256.New()
	write := func(d decimal.Decimal) {
		w := decimalToWord(d)
		h.Write(w[:])
	}
	write(s.SqrtPriceX96)
	write(s.Liquidity)
	write(s.FeeGrowthGlobal0X128)
	write(s.FeeGrowthGlobal1X128)
	for _, t := range s.Ticks {
		write(t.LiquidityGross)
		write(t.LiquidityNet)
		write(t.FeeGrowthOutside0X128)
		write(t.FeeGrowthOutside1X128)
	}
	for _, p := range s.Positions {
		write(p.Liquidity)
		write(p.FeeGrowthInside0LastX128)
		write(p.FeeGrowthInside1LastX128)
		write(p.TokensOwed0)
		write(p.TokensOwed1)
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// restoreFromSnapshot rebuilds a standalone CorePool from a Snapshot,
// sharing no structure with whatever pool (if any) the snapshot was
// originally taken from. It fails Corrupt if any recorded tick cannot be
// re-flipped into the bitmap (tick misaligned with Config.TickSpacing),
// which would mean the snapshot was not produced by this pool's config.
func restoreFromSnapshot(snap *Snapshot) (*CorePool, error) {
	pool := NewCorePool(snap.Config)
	pool.SqrtPriceX96 = snap.SqrtPriceX96
	pool.TickCurrent = snap.TickCurrent
	pool.Liquidity = snap.Liquidity
	pool.FeeGrowthGlobal0X128 = snap.FeeGrowthGlobal0X128
	pool.FeeGrowthGlobal1X128 = snap.FeeGrowthGlobal1X128

	for _, ts := range snap.Ticks {
		info := pool.TickManager.GetTickAndInitIfAbsent(ts.Tick)
		info.LiquidityGross = ts.LiquidityGross
		info.LiquidityNet = ts.LiquidityNet
		info.FeeGrowthOutside0X128 = ts.FeeGrowthOutside0X128
		info.FeeGrowthOutside1X128 = ts.FeeGrowthOutside1X128
		info.Initialized = true
		if err := pool.TickManager.FlipTick(ts.Tick); err != nil {
			return nil, wrapErr(ErrKindCorrupt, "restore snapshot: re-flip tick", err)
		}
	}

	for _, ps := range snap.Positions {
		pos := pool.PositionManager.GetPositionAndInitIfAbsent(ps.Owner, ps.TickLower, ps.TickUpper)
		pos.Liquidity = ps.Liquidity
		pos.FeeGrowthInside0LastX128 = ps.FeeGrowthInside0LastX128
		pos.FeeGrowthInside1LastX128 = ps.FeeGrowthInside1LastX128
		pos.TokensOwed0 = ps.TokensOwed0
		pos.TokensOwed1 = ps.TokensOwed1
	}

	return pool, nil
}
