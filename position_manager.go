package clmm

import (
	"fmt"
	"sort"
)

// positionKey identifies a position by owner and range, matching the
// keccak(owner, tickLower, tickUpper) key Solidity's pools use, rendered
// here as a plain comparable Go struct since the engine never needs the
// hash itself.
type positionKey struct {
	Owner     string
	TickLower int
	TickUpper int
}

func (k positionKey) String() string {
	return fmt.Sprintf("%s:%d:%d", k.Owner, k.TickLower, k.TickUpper)
}

// PositionManager owns every position in a pool, keyed by (owner,
// tickLower, tickUpper) exactly as Uniswap v3 pools do internally — distinct
// from the NFT-wrapped per-tokenId positions in nftpositions.go, which sit
// a layer above this and issue their own synthetic owner strings.
type PositionManager struct {
	positions map[positionKey]*PositionInfo
}

// NewPositionManager returns an empty position table.
func NewPositionManager() *PositionManager {
	return &PositionManager{positions: make(map[positionKey]*PositionInfo)}
}

// Clone deep-copies every position so a forked pool never shares mutable
// position state with its parent.
func (m *PositionManager) Clone() *PositionManager {
	c := &PositionManager{positions: make(map[positionKey]*PositionInfo, len(m.positions))}
	for k, v := range m.positions {
		c.positions[k] = v.Clone()
	}
	return c
}

// GetPositionReadonly returns the position at (owner, tickLower, tickUpper)
// or nil if it has never been created.
func (m *PositionManager) GetPositionReadonly(owner string, tickLower, tickUpper int) *PositionInfo {
	return m.positions[positionKey{owner, tickLower, tickUpper}]
}

// GetPositionAndInitIfAbsent returns the position at (owner, tickLower,
// tickUpper), creating a zeroed one the first time it is touched.
func (m *PositionManager) GetPositionAndInitIfAbsent(owner string, tickLower, tickUpper int) *PositionInfo {
	key := positionKey{owner, tickLower, tickUpper}
	p, ok := m.positions[key]
	if !ok {
		p = NewPositionInfo()
		m.positions[key] = p
	}
	return p
}

// SortedKeys returns every position key in a deterministic order, used by
// snapshot encoding.
func (m *PositionManager) SortedKeys() []positionKey {
	out := make([]positionKey, 0, len(m.positions))
	for k := range m.positions {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Len reports how many positions currently exist.
func (m *PositionManager) Len() int {
	return len(m.positions)
}
