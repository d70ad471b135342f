package clmm

import (
	"sync"

	"github.com/google/uuid"
)

// Roadmap is the process-wide directory (component G) that makes recover
// and cross-pool inspection work: every live ConfigurableCorePool registers
// itself by poolId, and every snapshot — whether still in memory or only
// reachable through the persistent store — registers by snapshotId.
// Registration is the only operation the spec requires be serialized
// (§5); a mutex is enough since it is never held across a suspension point.
type Roadmap struct {
	mu        sync.Mutex
	pools     map[uuid.UUID]*ConfigurableCorePool
	snapshots map[uuid.UUID]*Snapshot
	store     SnapshotStore
}

// NewRoadmap returns an empty directory. store may be nil; snapshots not
// found in memory simply fail lookup instead of falling through to disk.
func NewRoadmap(store SnapshotStore) *Roadmap {
	return &Roadmap{
		pools:     make(map[uuid.UUID]*ConfigurableCorePool),
		snapshots: make(map[uuid.UUID]*Snapshot),
		store:     store,
	}
}

// RegisterPool makes pool discoverable by its current PoolState id. Every
// ConfigurableCorePool mutation that reassigns Id (commit, StepBack,
// Recover, Fork) calls this again so the directory never falls behind the
// pool's live state id.
func (r *Roadmap) RegisterPool(pool *ConfigurableCorePool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[pool.Id] = pool
}

// GetPool looks up a live pool by its current state id.
func (r *Roadmap) GetPool(id uuid.UUID) (*ConfigurableCorePool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pools[id]
	return p, ok
}

// RegisterSnapshot makes an in-memory snapshot discoverable by id, e.g.
// right after takeSnapshot, before (or instead of) persisting it.
func (r *Roadmap) RegisterSnapshot(snap *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snap.Id] = snap
}

// GetSnapshot resolves a snapshot id, checking the in-memory index first
// and falling back to the persistent store (a suspension point, per §5)
// only on a miss.
func (r *Roadmap) GetSnapshot(id uuid.UUID) (*Snapshot, error) {
	r.mu.Lock()
	snap, ok := r.snapshots[id]
	r.mu.Unlock()
	if ok {
		return snap, nil
	}
	if r.store == nil {
		return nil, newErr(ErrKindSnapshotNotFound, "snapshot not found in memory and no persistent store configured")
	}
	snap, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.snapshots[snap.Id] = snap
	r.mu.Unlock()
	return snap, nil
}
