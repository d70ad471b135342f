package clmm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func word(v uint64) [32]byte {
	var w [32]byte
	new(big.Int).SetUint64(v).FillBytes(w[:])
	return w
}

func TestTokenPositionManagerCreateAndTransfer(t *testing.T) {
	m := NewTokenPositionManager()
	m.CreatePosition(NewTokenPosition(1, "0xowner", -60, 60))

	require.Len(t, m.GetPositionsByOwner("0xowner"), 1)

	require.NoError(t, m.HandleTransfer(1, "0xowner", "0xnewowner"))
	require.Len(t, m.GetPositionsByOwner("0xowner"), 0)
	require.Len(t, m.GetPositionsByOwner("0xnewowner"), 1)

	pos, ok := m.GetPosition(1)
	require.True(t, ok)
	require.Equal(t, "0xnewowner", pos.Owner)
}

func TestTokenPositionManagerIncreaseThenDecreaseLiquidity(t *testing.T) {
	m := NewTokenPositionManager()
	m.CreatePosition(NewTokenPosition(1, "0xowner", -60, 60))

	require.NoError(t, m.HandleIncreaseLiquidity(1, decimal.NewFromInt(1000), decimal.NewFromInt(10), decimal.NewFromInt(20)))
	pos, _ := m.GetPosition(1)
	require.True(t, decimal.NewFromInt(1000).Equal(pos.Liquidity))

	require.NoError(t, m.HandleDecreaseLiquidity(1, decimal.NewFromInt(400), decimal.NewFromInt(4), decimal.NewFromInt(8)))
	require.True(t, decimal.NewFromInt(600).Equal(pos.Liquidity))
	require.True(t, decimal.NewFromInt(4).Equal(pos.TokensOwed0))
	require.True(t, decimal.NewFromInt(8).Equal(pos.TokensOwed1))
}

func TestTokenPositionManagerCollectCapsAtOwed(t *testing.T) {
	m := NewTokenPositionManager()
	m.CreatePosition(NewTokenPosition(1, "0xowner", -60, 60))
	require.NoError(t, m.HandleDecreaseLiquidity(1, ZERO, decimal.NewFromInt(5), decimal.NewFromInt(5)))

	require.NoError(t, m.HandleCollect(1, decimal.NewFromInt(100), decimal.NewFromInt(2)))
	pos, _ := m.GetPosition(1)
	require.True(t, pos.TokensOwed0.IsZero())
	require.True(t, decimal.NewFromInt(3).Equal(pos.TokensOwed1))
}

func TestTokenPositionManagerCloneIsIndependent(t *testing.T) {
	m := NewTokenPositionManager()
	m.CreatePosition(NewTokenPosition(1, "0xowner", -60, 60))

	clone := m.Clone()
	clonedPos, _ := clone.GetPosition(1)
	clonedPos.Liquidity = decimal.NewFromInt(999)

	original, _ := m.GetPosition(1)
	require.True(t, original.Liquidity.IsZero())
}

func TestTokenPositionIsEmpty(t *testing.T) {
	pos := NewTokenPosition(1, "0xowner", -60, 60)
	require.True(t, pos.IsEmpty())
	pos.Liquidity = decimal.NewFromInt(1)
	require.False(t, pos.IsEmpty())
}

// TestNFTTopicSignaturesAreFullWidth guards against the truncated-hex
// regression: common.HexToHash silently left-pads an odd-length or
// short hex string with a zero nibble instead of failing, so a dropped
// trailing digit produces a well-formed but wrong topic hash that would
// never match a real on-chain log. Comparing the full hex string (not just
// decoding successfully) is the only way to catch that class of bug.
func TestNFTTopicSignaturesAreFullWidth(t *testing.T) {
	cases := map[string]common.Hash{
		"mint":              nftMintSig,
		"increaseLiquidity": nftIncreaseLiquiditySig,
		"decreaseLiquidity": nftDecreaseLiquiditySig,
		"collect":           nftCollectSig,
		"transfer":          nftTransferSig,
	}
	for name, sig := range cases {
		require.Len(t, sig.Bytes(), 32, "%s topic must be a full 32-byte hash, not zero-padded from a truncated literal", name)
	}
	require.Equal(t, "0x3067048beee31b25b2f1681f88dac838c8bba36af25bfb2b7cf7473a5847e35f", nftIncreaseLiquiditySig.Hex())
	require.Equal(t, "0x26f6a048ee9138f2c0ce266f322cb99228e8d619ae2bff30c67f8dcf9d2377b4", nftDecreaseLiquiditySig.Hex())
}

func TestParseNFTIncreaseLiquidityEvent(t *testing.T) {
	tokenIDWord := word(42)
	liquidityWord := word(1000)
	amount0Word := word(10)
	amount1Word := word(20)

	data := append(append(append([]byte{}, liquidityWord[:]...), amount0Word[:]...), amount1Word[:]...)
	log := &types.Log{
		Topics: []common.Hash{nftIncreaseLiquiditySig, common.BytesToHash(tokenIDWord[:])},
		Data:   data,
	}

	tokenID, liquidity, amount0, amount1, err := ParseNFTIncreaseLiquidityEvent(log)
	require.NoError(t, err)
	require.Equal(t, uint64(42), tokenID)
	require.True(t, decimal.NewFromInt(1000).Equal(liquidity))
	require.True(t, decimal.NewFromInt(10).Equal(amount0))
	require.True(t, decimal.NewFromInt(20).Equal(amount1))
}

func TestParseNFTDecreaseLiquidityEvent(t *testing.T) {
	tokenIDWord := word(7)
	liquidityWord := word(500)
	amount0Word := word(1)
	amount1Word := word(2)

	data := append(append(append([]byte{}, liquidityWord[:]...), amount0Word[:]...), amount1Word[:]...)
	log := &types.Log{
		Topics: []common.Hash{nftDecreaseLiquiditySig, common.BytesToHash(tokenIDWord[:])},
		Data:   data,
	}

	tokenID, liquidity, amount0, amount1, err := ParseNFTDecreaseLiquidityEvent(log)
	require.NoError(t, err)
	require.Equal(t, uint64(7), tokenID)
	require.True(t, decimal.NewFromInt(500).Equal(liquidity))
	require.True(t, decimal.NewFromInt(1).Equal(amount0))
	require.True(t, decimal.NewFromInt(2).Equal(amount1))
}
