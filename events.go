package clmm

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// LiquidityEventType distinguishes a MINT event from a BURN event in a
// recorded event stream.
type LiquidityEventType string

const (
	LiquidityEventMint LiquidityEventType = "MINT"
	LiquidityEventBurn LiquidityEventType = "BURN"
)

// LiquidityEvent is a recorded mint/burn, the shape spec §6 describes for
// event input.
type LiquidityEvent struct {
	Id          string
	BlockNumber uint64
	LogIndex    uint64
	Type        LiquidityEventType
	TickLower   int
	TickUpper   int
	Liquidity   decimal.Decimal
	Amount0     decimal.Decimal
	Amount1     decimal.Decimal
	Date        time.Time
}

// SwapEvent is a recorded swap, the shape spec §6 describes for event
// input. It records both resulting amounts but not which side the original
// caller specified — replay.go's ApplySwapEvent recovers that.
type SwapEvent struct {
	Id           string
	BlockNumber  uint64
	LogIndex     uint64
	Amount0      decimal.Decimal
	Amount1      decimal.Decimal
	SqrtPriceX96 decimal.Decimal
	Liquidity    decimal.Decimal
	Tick         int
	Date         time.Time
}

// EventBatch is a date-windowed, ascending-(block_number, log_index)-sorted
// pair of event streams ready for sequential replay.
type EventBatch struct {
	LiquidityEvents []LiquidityEvent
	SwapEvents      []SwapEvent
}

// liquidityEventLess and swapEventLess order the two event kinds by
// (block_number, log_index), the
// ordering replay determinism (spec §5) depends on.
func liquidityEventLess(a, b LiquidityEvent) bool {
	if a.BlockNumber != b.BlockNumber {
		return a.BlockNumber < b.BlockNumber
	}
	return a.LogIndex < b.LogIndex
}

func swapEventLess(a, b SwapEvent) bool {
	if a.BlockNumber != b.BlockNumber {
		return a.BlockNumber < b.BlockNumber
	}
	return a.LogIndex < b.LogIndex
}

// Sort orders both slices in place by (block_number, log_index) ascending.
func (b *EventBatch) Sort() {
	sort.Slice(b.LiquidityEvents, func(i, j int) bool { return liquidityEventLess(b.LiquidityEvents[i], b.LiquidityEvents[j]) })
	sort.Slice(b.SwapEvents, func(i, j int) bool { return swapEventLess(b.SwapEvents[i], b.SwapEvents[j]) })
}

// LoadLiquidityEventsCSV reads mint/burn events from a CSV stream with
// header columns: id,block_number,log_index,type,tick_lower,tick_upper,
// liquidity,amount0,amount1,date (RFC3339). There is no CSV-handling
// library anywhere in the retrieval pack to adopt, so this reads with the
// standard library's encoding/csv directly — see DESIGN.md.
func LoadLiquidityEventsCSV(r io.Reader) ([]LiquidityEvent, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, wrapErr(ErrKindIOFailure, "read liquidity event csv", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]LiquidityEvent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		ev, err := parseLiquidityEventRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func parseLiquidityEventRow(row []string) (LiquidityEvent, error) {
	if len(row) < 10 {
		return LiquidityEvent{}, newErr(ErrKindCorrupt, "liquidity event row has too few columns")
	}
	blockNumber, err := parseUint(row[1])
	if err != nil {
		return LiquidityEvent{}, wrapErr(ErrKindCorrupt, "parse block_number", err)
	}
	logIndex, err := parseUint(row[2])
	if err != nil {
		return LiquidityEvent{}, wrapErr(ErrKindCorrupt, "parse log_index", err)
	}
	tickLower, err := parseInt(row[4])
	if err != nil {
		return LiquidityEvent{}, wrapErr(ErrKindCorrupt, "parse tick_lower", err)
	}
	tickUpper, err := parseInt(row[5])
	if err != nil {
		return LiquidityEvent{}, wrapErr(ErrKindCorrupt, "parse tick_upper", err)
	}
	liquidity, err := decimal.NewFromString(row[6])
	if err != nil {
		return LiquidityEvent{}, wrapErr(ErrKindCorrupt, "parse liquidity", err)
	}
	amount0, err := decimal.NewFromString(row[7])
	if err != nil {
		return LiquidityEvent{}, wrapErr(ErrKindCorrupt, "parse amount0", err)
	}
	amount1, err := decimal.NewFromString(row[8])
	if err != nil {
		return LiquidityEvent{}, wrapErr(ErrKindCorrupt, "parse amount1", err)
	}
	date, err := time.Parse(time.RFC3339, row[9])
	if err != nil {
		return LiquidityEvent{}, wrapErr(ErrKindCorrupt, "parse date", err)
	}
	return LiquidityEvent{
		Id:          row[0],
		BlockNumber: blockNumber,
		LogIndex:    logIndex,
		Type:        LiquidityEventType(row[3]),
		TickLower:   tickLower,
		TickUpper:   tickUpper,
		Liquidity:   liquidity,
		Amount0:     amount0,
		Amount1:     amount1,
		Date:        date,
	}, nil
}

// LoadSwapEventsCSV reads swap events from a CSV stream with header
// columns: id,block_number,log_index,amount0,amount1,sqrt_price_x96,
// liquidity,tick,date (RFC3339).
func LoadSwapEventsCSV(r io.Reader) ([]SwapEvent, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, wrapErr(ErrKindIOFailure, "read swap event csv", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]SwapEvent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		ev, err := parseSwapEventRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func parseSwapEventRow(row []string) (SwapEvent, error) {
	if len(row) < 9 {
		return SwapEvent{}, newErr(ErrKindCorrupt, "swap event row has too few columns")
	}
	blockNumber, err := parseUint(row[1])
	if err != nil {
		return SwapEvent{}, wrapErr(ErrKindCorrupt, "parse block_number", err)
	}
	logIndex, err := parseUint(row[2])
	if err != nil {
		return SwapEvent{}, wrapErr(ErrKindCorrupt, "parse log_index", err)
	}
	amount0, err := decimal.NewFromString(row[3])
	if err != nil {
		return SwapEvent{}, wrapErr(ErrKindCorrupt, "parse amount0", err)
	}
	amount1, err := decimal.NewFromString(row[4])
	if err != nil {
		return SwapEvent{}, wrapErr(ErrKindCorrupt, "parse amount1", err)
	}
	sqrtPriceX96, err := decimal.NewFromString(row[5])
	if err != nil {
		return SwapEvent{}, wrapErr(ErrKindCorrupt, "parse sqrt_price_x96", err)
	}
	liquidity, err := decimal.NewFromString(row[6])
	if err != nil {
		return SwapEvent{}, wrapErr(ErrKindCorrupt, "parse liquidity", err)
	}
	tick, err := parseInt(row[7])
	if err != nil {
		return SwapEvent{}, wrapErr(ErrKindCorrupt, "parse tick", err)
	}
	date, err := time.Parse(time.RFC3339, row[8])
	if err != nil {
		return SwapEvent{}, wrapErr(ErrKindCorrupt, "parse date", err)
	}
	return SwapEvent{
		Id:           row[0],
		BlockNumber:  blockNumber,
		LogIndex:     logIndex,
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: sqrtPriceX96,
		Liquidity:    liquidity,
		Tick:         tick,
		Date:         date,
	}, nil
}

// LoadEventBatchJSON reads a combined {"liquidity_events": [...],
// "swap_events": [...]} document, the alternative to the two CSV loaders
// when events arrive pre-joined from an indexer.
func LoadEventBatchJSON(r io.Reader) (*EventBatch, error) {
	var doc struct {
		LiquidityEvents []jsonLiquidityEvent `json:"liquidity_events"`
		SwapEvents      []jsonSwapEvent      `json:"swap_events"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, wrapErr(ErrKindCorrupt, "decode event batch json", err)
	}
	batch := &EventBatch{
		LiquidityEvents: make([]LiquidityEvent, 0, len(doc.LiquidityEvents)),
		SwapEvents:      make([]SwapEvent, 0, len(doc.SwapEvents)),
	}
	for _, e := range doc.LiquidityEvents {
		batch.LiquidityEvents = append(batch.LiquidityEvents, e.toEvent())
	}
	for _, e := range doc.SwapEvents {
		batch.SwapEvents = append(batch.SwapEvents, e.toEvent())
	}
	batch.Sort()
	return batch, nil
}

type jsonLiquidityEvent struct {
	Id          string          `json:"id"`
	BlockNumber uint64          `json:"block_number"`
	LogIndex    uint64          `json:"log_index"`
	Type        string          `json:"type"`
	TickLower   int             `json:"tick_lower"`
	TickUpper   int             `json:"tick_upper"`
	Liquidity   decimal.Decimal `json:"liquidity"`
	Amount0     decimal.Decimal `json:"amount0"`
	Amount1     decimal.Decimal `json:"amount1"`
	Date        time.Time       `json:"date"`
}

func (e jsonLiquidityEvent) toEvent() LiquidityEvent {
	return LiquidityEvent{
		Id: e.Id, BlockNumber: e.BlockNumber, LogIndex: e.LogIndex, Type: LiquidityEventType(e.Type),
		TickLower: e.TickLower, TickUpper: e.TickUpper, Liquidity: e.Liquidity,
		Amount0: e.Amount0, Amount1: e.Amount1, Date: e.Date,
	}
}

type jsonSwapEvent struct {
	Id           string          `json:"id"`
	BlockNumber  uint64          `json:"block_number"`
	LogIndex     uint64          `json:"log_index"`
	Amount0      decimal.Decimal `json:"amount0"`
	Amount1      decimal.Decimal `json:"amount1"`
	SqrtPriceX96 decimal.Decimal `json:"sqrt_price_x96"`
	Liquidity    decimal.Decimal `json:"liquidity"`
	Tick         int             `json:"tick"`
	Date         time.Time       `json:"date"`
}

func (e jsonSwapEvent) toEvent() SwapEvent {
	return SwapEvent{
		Id: e.Id, BlockNumber: e.BlockNumber, LogIndex: e.LogIndex, Amount0: e.Amount0, Amount1: e.Amount1,
		SqrtPriceX96: e.SqrtPriceX96, Liquidity: e.Liquidity, Tick: e.Tick, Date: e.Date,
	}
}

func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, wrapErr(ErrKindCorrupt, "parse unsigned integer field", err)
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, wrapErr(ErrKindCorrupt, "parse integer field", err)
	}
	return v, nil
}
