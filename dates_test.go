package clmm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDateWindow(t *testing.T) {
	w, err := ParseDateWindow("2024-01-01", "2024-02-01")
	require.NoError(t, err)
	require.True(t, w.Contains(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.False(t, w.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateWindowEndBeforeStartFails(t *testing.T) {
	_, err := ParseDateWindow("2024-02-01", "2024-01-01")
	require.ErrorIs(t, err, &PoolError{Kind: ErrKindCorrupt})
}

func TestDateWindowFiltersEvents(t *testing.T) {
	w, err := ParseDateWindow("2024-01-01", "2024-01-02")
	require.NoError(t, err)

	events := []SwapEvent{
		{Id: "in", Date: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{Id: "out", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	filtered := w.FilterSwapEvents(events)
	require.Len(t, filtered, 1)
	require.Equal(t, "in", filtered[0].Id)
}
