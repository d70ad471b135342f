package clmm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadLiquidityEventsCSV(t *testing.T) {
	csv := "id,block_number,log_index,type,tick_lower,tick_upper,liquidity,amount0,amount1,date\n" +
		"e1,100,0,MINT,192180,193380,10860507277202,500,600,2024-01-01T00:00:00Z\n"

	events, err := LoadLiquidityEventsCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "e1", events[0].Id)
	require.Equal(t, uint64(100), events[0].BlockNumber)
	require.Equal(t, LiquidityEventMint, events[0].Type)
	require.Equal(t, 192180, events[0].TickLower)
}

func TestLoadSwapEventsCSV(t *testing.T) {
	csv := "id,block_number,log_index,amount0,amount1,sqrt_price_x96,liquidity,tick,date\n" +
		"e1,100,1,1000,-900,1461446703485210103287273052203988822378723970342,5000,195285,2024-01-01T00:00:00Z\n"

	events, err := LoadSwapEventsCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, 195285, events[0].Tick)
}

func TestLoadEventBatchJSONSortsByBlockAndLogIndex(t *testing.T) {
	doc := `{
		"liquidity_events": [{"id":"l2","block_number":100,"log_index":5,"type":"MINT","tick_lower":0,"tick_upper":60,"liquidity":"1","amount0":"1","amount1":"1","date":"2024-01-01T00:00:00Z"}],
		"swap_events": [{"id":"s2","block_number":100,"log_index":3,"amount0":"1","amount1":"-1","sqrt_price_x96":"1","liquidity":"1","tick":0,"date":"2024-01-01T00:00:00Z"},
			{"id":"s1","block_number":100,"log_index":1,"amount0":"1","amount1":"-1","sqrt_price_x96":"1","liquidity":"1","tick":0,"date":"2024-01-01T00:00:00Z"}]
	}`

	batch, err := LoadEventBatchJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, batch.LiquidityEvents, 1)
	require.Len(t, batch.SwapEvents, 2)
	require.Equal(t, "s1", batch.SwapEvents[0].Id)
	require.Equal(t, "s2", batch.SwapEvents[1].Id)
	require.True(t, swapEventLess(batch.SwapEvents[0], SwapEvent{BlockNumber: 100, LogIndex: 5}))
}
