package clmm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotChecksumStableAndSensitive(t *testing.T) {
	pool := NewCorePool(usdcWethConfig())
	require.NoError(t, pool.Initialize(hexToDecimal(t, "0x43efef20f018fdc58e7a5cf0416a")))
	minTick, maxTick := MinTick/60*60, MaxTick/60*60
	_, _, err := pool.Mint("lp", minTick, maxTick, decimalFromString("10860507277202"))
	require.NoError(t, err)

	snapA := takeSnapshot(pool, "a")
	snapB := takeSnapshot(pool, "b")
	require.Equal(t, snapA.Checksum(), snapB.Checksum(), "identical pool state must checksum identically regardless of description/id")

	_, _, err = pool.Mint("lp", minTick, maxTick, decimalFromString("1"))
	require.NoError(t, err)
	snapC := takeSnapshot(pool, "c")
	require.NotEqual(t, snapA.Checksum(), snapC.Checksum(), "a changed position must change the checksum")
}

func TestSnapshotRestoreRoundTripPreservesChecksum(t *testing.T) {
	pool := NewCorePool(usdcWethConfig())
	require.NoError(t, pool.Initialize(hexToDecimal(t, "0x43efef20f018fdc58e7a5cf0416a")))
	minTick, maxTick := MinTick/60*60, MaxTick/60*60
	_, _, err := pool.Mint("lp", minTick, maxTick, decimalFromString("10860507277202"))
	require.NoError(t, err)

	snap := takeSnapshot(pool, "round-trip")
	restored, err := restoreFromSnapshot(snap)
	require.NoError(t, err)
	require.Equal(t, snap.Checksum(), takeSnapshot(restored, "other-description").Checksum())
}
