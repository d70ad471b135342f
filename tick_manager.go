package clmm

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TickManager owns the pool's tick table and its companion bitmap, mirroring
// the TickManager the teacher's pool.go calls into for every mint, burn, and
// swap-step tick crossing. It is not present as a standalone file in the
// retrieved teacher sources, so its shape here is reconstructed entirely
// from how pool.go calls it (GetNextInitializedTick, GetTickAndInitIfAbsent,
// GetFeeGrowthInside, Clear, Clone).
type TickManager struct {
	TickSpacing int
	ticks       map[int]*TickInfo
	bitmap      *TickBitmap
}

// NewTickManager returns an empty tick table for the given tick spacing.
func NewTickManager(tickSpacing int) *TickManager {
	return &TickManager{
		TickSpacing: tickSpacing,
		ticks:       make(map[int]*TickInfo),
		bitmap:      NewTickBitmap(),
	}
}

// Clone deep-copies every tick and the bitmap so a forked pool's tick table
// never aliases its parent's.
func (m *TickManager) Clone() *TickManager {
	c := &TickManager{
		TickSpacing: m.TickSpacing,
		ticks:       make(map[int]*TickInfo, len(m.ticks)),
		bitmap:      m.bitmap.Clone(),
	}
	for k, v := range m.ticks {
		c.ticks[k] = v.Clone()
	}
	return c
}

// GetTick returns the tick record at the given index, or nil if it has
// never been touched.
func (m *TickManager) GetTick(tick int) *TickInfo {
	return m.ticks[tick]
}

// GetTickAndInitIfAbsent returns the tick record at the given index,
// creating a zeroed uninitialized one the first time it is touched.
func (m *TickManager) GetTickAndInitIfAbsent(tick int) *TickInfo {
	t, ok := m.ticks[tick]
	if !ok {
		t = NewTickInfo(tick)
		m.ticks[tick] = t
	}
	return t
}

// FlipTick toggles the bitmap bit for a tick that just transitioned between
// initialized and uninitialized.
func (m *TickManager) FlipTick(tick int) error {
	return m.bitmap.FlipTick(tick, m.TickSpacing)
}

// Clear drops a tick's bookkeeping entirely once it has flipped back to
// zero liquidityGross, matching pool.go's call to TickManager.Clear on that
// transition.
func (m *TickManager) Clear(tick int) {
	delete(m.ticks, tick)
}

// GetNextInitializedTick finds the next initialized tick strictly within
// one bitmap word of `tick`, searching toward negative infinity when
// zeroForOne (price falling) or positive infinity otherwise — the primitive
// HandleSwap's step loop advances through one word at a time.
func (m *TickManager) GetNextInitializedTick(tick int, zeroForOne bool) (next int, initialized bool) {
	return m.bitmap.NextInitializedTickWithinOneWord(tick, m.TickSpacing, zeroForOne)
}

// GetFeeGrowthInside computes the fee growth accrued within [tickLower,
// tickUpper], treating either bound as never-crossed (all outside growth
// zero) when it has no tick record yet.
func (m *TickManager) GetFeeGrowthInside(
	tickLower, tickUpper, tickCurrent int,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 decimal.Decimal,
) (decimal.Decimal, decimal.Decimal) {
	lower := m.ticks[tickLower]
	if lower == nil {
		lower = NewTickInfo(tickLower)
	}
	upper := m.ticks[tickUpper]
	if upper == nil {
		upper = NewTickInfo(tickUpper)
	}
	return getFeeGrowthInside(lower, upper, tickLower, tickUpper, tickCurrent, feeGrowthGlobal0X128, feeGrowthGlobal1X128)
}

// SortedTicks returns every tick index that has a record, initialized or
// not, in ascending order, used
// by snapshot encoding to keep output deterministic regardless of Go's
// randomized map iteration.
func (m *TickManager) SortedTicks() []int {
	out := make([]int, 0, len(m.ticks))
	for k := range m.ticks {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Len reports how many tick records currently exist.
func (m *TickManager) Len() int {
	return len(m.ticks)
}
