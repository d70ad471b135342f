package clmm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRoadmapRegisterAndGetPool(t *testing.T) {
	roadmap := NewRoadmap(nil)
	sm := NewConfigurableCorePool(usdcWethConfig(), roadmap, nil)

	got, ok := roadmap.GetPool(sm.Id)
	require.True(t, ok)
	require.Same(t, sm, got)
}

func TestRoadmapGetPoolResolvesAfterMutation(t *testing.T) {
	roadmap := NewRoadmap(nil)
	sm := NewConfigurableCorePool(usdcWethConfig(), roadmap, nil)
	require.NoError(t, sm.Initialize(hexToDecimal(t, "0x43efef20f018fdc58e7a5cf0416a")))

	got, ok := roadmap.GetPool(sm.Id)
	require.True(t, ok, "GetPool must resolve the pool's current state id, not just its construction-time id")
	require.Same(t, sm, got)
}

func TestRoadmapSnapshotMemoryLookup(t *testing.T) {
	roadmap := NewRoadmap(nil)
	sm := NewConfigurableCorePool(usdcWethConfig(), roadmap, nil)
	snapshotId := sm.TakeSnapshot("s")

	snap, err := roadmap.GetSnapshot(snapshotId)
	require.NoError(t, err)
	require.Equal(t, snapshotId, snap.Id)
}

func TestRoadmapSnapshotNotFoundWithoutStore(t *testing.T) {
	roadmap := NewRoadmap(nil)
	_, err := roadmap.GetSnapshot(uuid.New())
	require.ErrorIs(t, err, &PoolError{Kind: ErrKindSnapshotNotFound})
}
