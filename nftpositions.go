package clmm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// TokenPosition is the NonfungiblePositionManager-style wrapper around a
// (owner, tickLower, tickUpper) position, addressed by an ERC-721 tokenId
// instead of an owner address directly — adapted from the teacher's
// TokenPosition/TokenPositionManager (token_position_manager.go), which
// this package's CorePool/PositionManager do not need internally but which
// any NFT-position-manager-shaped event stream (mint/increase/decrease/
// collect/transfer) requires a layer above the core pool to reconstruct.
type TokenPosition struct {
	TokenID                  uint64
	Owner                    string
	TickLower                int
	TickUpper                int
	Liquidity                decimal.Decimal
	FeeGrowthInside0LastX128 decimal.Decimal
	FeeGrowthInside1LastX128 decimal.Decimal
	TokensOwed0              decimal.Decimal
	TokensOwed1              decimal.Decimal
}

// NewTokenPosition returns a zeroed record for a freshly minted tokenId.
func NewTokenPosition(tokenID uint64, owner string, tickLower, tickUpper int) *TokenPosition {
	return &TokenPosition{
		TokenID:                  tokenID,
		Owner:                    owner,
		TickLower:                tickLower,
		TickUpper:                tickUpper,
		Liquidity:                ZERO,
		FeeGrowthInside0LastX128: ZERO,
		FeeGrowthInside1LastX128: ZERO,
		TokensOwed0:              ZERO,
		TokensOwed1:              ZERO,
	}
}

// Clone deep-copies the record (decimal.Decimal is immutable, so a shallow
// struct copy suffices).
func (p *TokenPosition) Clone() *TokenPosition {
	c := *p
	return &c
}

// IsEmpty reports whether the position carries neither liquidity nor owed
// tokens, the condition the teacher's simulator uses to decide whether an
// NFT can be burned.
func (p *TokenPosition) IsEmpty() bool {
	return p.Liquidity.IsZero() && p.TokensOwed0.IsZero() && p.TokensOwed1.IsZero()
}

// TokenPositionManager indexes TokenPositions by tokenId and by owner, so
// owner-scoped lookups stay O(1) instead of scanning every position. There
// is no per-pool index.
type TokenPositionManager struct {
	Positions  map[uint64]*TokenPosition
	OwnerTokens map[string][]uint64
}

// NewTokenPositionManager returns an empty index.
func NewTokenPositionManager() *TokenPositionManager {
	return &TokenPositionManager{
		Positions:   make(map[uint64]*TokenPosition),
		OwnerTokens: make(map[string][]uint64),
	}
}

// Clone deep-copies every map and every position within them.
func (m *TokenPositionManager) Clone() *TokenPositionManager {
	c := NewTokenPositionManager()
	for k, v := range m.Positions {
		c.Positions[k] = v.Clone()
	}
	for k, v := range m.OwnerTokens {
		cp := make([]uint64, len(v))
		copy(cp, v)
		c.OwnerTokens[k] = cp
	}
	return c
}

// CreatePosition registers a freshly minted tokenId under its owner's
// index.
func (m *TokenPositionManager) CreatePosition(pos *TokenPosition) {
	m.Positions[pos.TokenID] = pos
	m.OwnerTokens[pos.Owner] = append(m.OwnerTokens[pos.Owner], pos.TokenID)
}

// GetPosition looks up a position by tokenId.
func (m *TokenPositionManager) GetPosition(tokenID uint64) (*TokenPosition, bool) {
	p, ok := m.Positions[tokenID]
	return p, ok
}

// GetPositionsByOwner returns every tokenId currently held by owner.
func (m *TokenPositionManager) GetPositionsByOwner(owner string) []uint64 {
	return m.OwnerTokens[owner]
}

// HandleIncreaseLiquidity folds a NonfungiblePositionManager
// IncreaseLiquidity event into the position's liquidity. amount0 and
// amount1 are accepted but not recorded.
func (m *TokenPositionManager) HandleIncreaseLiquidity(tokenID uint64, liquidityDelta, amount0, amount1 decimal.Decimal) error {
	pos, ok := m.Positions[tokenID]
	if !ok {
		return newErr(ErrKindNotInitialized, fmt.Sprintf("increase liquidity: unknown tokenId %d", tokenID))
	}
	next, err := LiquidityAddDelta(pos.Liquidity, liquidityDelta)
	if err != nil {
		return err
	}
	pos.Liquidity = next
	return nil
}

// HandleDecreaseLiquidity folds a DecreaseLiquidity event into the
// position's liquidity, crediting the freed amounts to tokensOwed.
func (m *TokenPositionManager) HandleDecreaseLiquidity(tokenID uint64, liquidityDelta, amount0, amount1 decimal.Decimal) error {
	pos, ok := m.Positions[tokenID]
	if !ok {
		return newErr(ErrKindNotInitialized, fmt.Sprintf("decrease liquidity: unknown tokenId %d", tokenID))
	}
	next, err := LiquidityAddDelta(pos.Liquidity, liquidityDelta.Neg())
	if err != nil {
		return err
	}
	pos.Liquidity = next
	pos.TokensOwed0 = pos.TokensOwed0.Add(amount0)
	pos.TokensOwed1 = pos.TokensOwed1.Add(amount1)
	return nil
}

// HandleCollect withdraws up to (amount0, amount1) from a position's
// tokensOwed.
func (m *TokenPositionManager) HandleCollect(tokenID uint64, amount0, amount1 decimal.Decimal) error {
	pos, ok := m.Positions[tokenID]
	if !ok {
		return newErr(ErrKindNotInitialized, fmt.Sprintf("collect: unknown tokenId %d", tokenID))
	}
	a0, a1 := pos.TokensOwed0, pos.TokensOwed1
	if amount0.LessThan(a0) {
		a0 = amount0
	}
	if amount1.LessThan(a1) {
		a1 = amount1
	}
	pos.TokensOwed0 = pos.TokensOwed0.Sub(a0)
	pos.TokensOwed1 = pos.TokensOwed1.Sub(a1)
	return nil
}

// HandleTransfer moves a tokenId from one owner's index to another's,
// swap-and-truncate removing it from the source slice.
func (m *TokenPositionManager) HandleTransfer(tokenID uint64, from, to string) error {
	pos, ok := m.Positions[tokenID]
	if !ok {
		return newErr(ErrKindNotInitialized, fmt.Sprintf("transfer: unknown tokenId %d", tokenID))
	}
	tokens := m.OwnerTokens[from]
	for i, id := range tokens {
		if id == tokenID {
			tokens[i] = tokens[len(tokens)-1]
			m.OwnerTokens[from] = tokens[:len(tokens)-1]
			break
		}
	}
	m.OwnerTokens[to] = append(m.OwnerTokens[to], tokenID)
	pos.Owner = to
	return nil
}

// GormDataType tells gorm to store TokenPositionManager as a JSON blob
// column, the same LONGTEXT-over-JSON pattern the teacher's
// TokenPositionManager uses.
func (TokenPositionManager) GormDataType() string {
	return "LONGTEXT"
}

// Scan implements sql.Scanner, decoding a JSON blob column back into the
// index.
func (m *TokenPositionManager) Scan(value interface{}) error {
	if value == nil {
		*m = *NewTokenPositionManager()
		return nil
	}
	var bs []byte
	switch v := value.(type) {
	case []byte:
		bs = v
	case string:
		bs = []byte(v)
	default:
		return newErr(ErrKindCorrupt, "unsupported type for TokenPositionManager.Scan")
	}
	return json.Unmarshal(bs, m)
}

// Value implements driver.Valuer, encoding the index as a JSON blob.
func (m TokenPositionManager) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// NFT event topic signatures, matching the teacher's
// NonfungiblePositionManager*Sig vars in nft_event_parsers.go.
var (
	nftMintSig              = common.HexToHash("0x7a0d934f60b317c7c9bebdaf0c4ce63a25e3c8a33bd4567b1ba28b6a5b20c5e2")
	nftIncreaseLiquiditySig = common.HexToHash("0x3067048beee31b25b2f1681f88dac838c8bba36af25bfb2b7cf7473a5847e35f")
	nftDecreaseLiquiditySig = common.HexToHash("0x26f6a048ee9138f2c0ce266f322cb99228e8d619ae2bff30c67f8dcf9d2377b4")
	nftCollectSig           = common.HexToHash("0x40d0efd1a53d60ecbf40971b9daf7dc90178c3aadc7aab1765632738fa8b8f01")
	nftTransferSig          = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
)

var uint256Type, _ = abi.NewType("uint256", "", nil)

// ParseNFTMintEvent decodes an IncreaseLiquidity-accompanying Transfer log
// (the mint path emits Transfer(0x0 -> owner, tokenId) first) into the
// tokenId and owner a caller should register a new TokenPosition under.
// Topics: [sig, from, to, tokenId].
func ParseNFTMintEvent(log *types.Log) (tokenID uint64, owner string, err error) {
	if len(log.Topics) < 4 {
		return 0, "", newErr(ErrKindCorrupt, "mint transfer log: expected 4 topics")
	}
	tokenIDBig, err := abi.ReadInteger(uint256Type, log.Topics[3].Bytes())
	if err != nil {
		return 0, "", wrapErr(ErrKindCorrupt, "decode mint tokenId", err)
	}
	owner = strings.ToLower(common.BytesToAddress(log.Topics[2].Bytes()).Hex())
	return tokenIDBig.(*big.Int).Uint64(), owner, nil
}

// ParseNFTIncreaseLiquidityEvent decodes IncreaseLiquidity(tokenId
// indexed, liquidity, amount0, amount1). Topics: [sig, tokenId]; Data:
// liquidity || amount0 || amount1, three 32-byte words.
func ParseNFTIncreaseLiquidityEvent(log *types.Log) (tokenID uint64, liquidity, amount0, amount1 decimal.Decimal, err error) {
	if len(log.Topics) < 2 || len(log.Data) < 96 {
		return 0, ZERO, ZERO, ZERO, newErr(ErrKindCorrupt, "increase liquidity log: malformed topics/data")
	}
	idBig, err := abi.ReadInteger(uint256Type, log.Topics[1].Bytes())
	if err != nil {
		return 0, ZERO, ZERO, ZERO, wrapErr(ErrKindCorrupt, "decode tokenId", err)
	}
	liquidity = decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[0:32]), 0)
	amount0 = decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[32:64]), 0)
	amount1 = decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[64:96]), 0)
	return idBig.(*big.Int).Uint64(), liquidity, amount0, amount1, nil
}

// ParseNFTDecreaseLiquidityEvent decodes DecreaseLiquidity(tokenId
// indexed, liquidity, amount0, amount1) identically in shape to
// IncreaseLiquidity.
func ParseNFTDecreaseLiquidityEvent(log *types.Log) (tokenID uint64, liquidity, amount0, amount1 decimal.Decimal, err error) {
	return ParseNFTIncreaseLiquidityEvent(log)
}

// ParseNFTCollectEvent decodes Collect(tokenId indexed, recipient,
// amount0, amount1). Topics: [sig, tokenId]; Data: recipient (32-byte,
// address right-aligned) || amount0 || amount1.
func ParseNFTCollectEvent(log *types.Log) (tokenID uint64, amount0, amount1 decimal.Decimal, err error) {
	if len(log.Topics) < 2 || len(log.Data) < 96 {
		return 0, ZERO, ZERO, newErr(ErrKindCorrupt, "collect log: malformed topics/data")
	}
	idBig, err := abi.ReadInteger(uint256Type, log.Topics[1].Bytes())
	if err != nil {
		return 0, ZERO, ZERO, wrapErr(ErrKindCorrupt, "decode tokenId", err)
	}
	amount0 = decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[32:64]), 0)
	amount1 = decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[64:96]), 0)
	return idBig.(*big.Int).Uint64(), amount0, amount1, nil
}

// ParseNFTTransferEvent decodes Transfer(from indexed, to indexed, tokenId
// indexed). Mint/burn transfers (from or to the zero address) are the
// caller's responsibility to special-case, matching processTransferEvent's
// convention in the teacher's nft_position_simulator.go.
func ParseNFTTransferEvent(log *types.Log) (from, to string, tokenID uint64, err error) {
	if len(log.Topics) < 4 {
		return "", "", 0, newErr(ErrKindCorrupt, "transfer log: expected 4 topics")
	}
	from = strings.ToLower(common.BytesToAddress(log.Topics[1].Bytes()).Hex())
	to = strings.ToLower(common.BytesToAddress(log.Topics[2].Bytes()).Hex())
	idBig, err := abi.ReadInteger(uint256Type, log.Topics[3].Bytes())
	if err != nil {
		return "", "", 0, wrapErr(ErrKindCorrupt, "decode tokenId", err)
	}
	return from, to, idBig.(*big.Int).Uint64(), nil
}

// topicSignatures exposes the package's event topic hashes for a caller
// building a ChainEventSource's topic filter for the NFT position manager
// contract (as opposed to the pool contract's MINT/BURN/SWAP topics).
func topicSignatures() []common.Hash {
	return []common.Hash{nftMintSig, nftIncreaseLiquiditySig, nftDecreaseLiquiditySig, nftCollectSig, nftTransferSig}
}
