package clmm

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PostProcessor observes every successful transition. An error it returns
// rolls the transition back (spec §4.F): the pool reverts to its
// pre-transition state as if the mutating call itself had failed.
type PostProcessor func(pool *ConfigurableCorePool, transition *Transition) error

// ConfigurableCorePool is the state-machine wrapper (component F) around a
// pure CorePool: it is the thing callers actually drive. Every mutating
// call forwards to the engine, then — only on success — appends a
// Transition and assigns PoolState a fresh id, matching the teacher's
// pattern of stamping an audit Record after each HandleSwap/modifyPosition
// but generalized into a full undoable transition log instead of a flat
// append-only history.
type ConfigurableCorePool struct {
	pool *CorePool
	Id   uuid.UUID

	transitions []*Transition
	snapshot    *Snapshot

	roadmap        *Roadmap
	store          SnapshotStore
	postProcessor  PostProcessor
}

// NewConfigurableCorePool creates an uninitialized pool registered with
// roadmap. store may be nil if persistence is not needed.
func NewConfigurableCorePool(config PoolConfig, roadmap *Roadmap, store SnapshotStore) *ConfigurableCorePool {
	c := &ConfigurableCorePool{
		pool:        NewCorePool(config),
		Id:          uuid.New(),
		transitions: nil,
		roadmap:     roadmap,
		store:       store,
	}
	c.registerWithRoadmap()
	return c
}

// Pool exposes the underlying engine read-only, for inspection (e.g. the
// inspect CLI command).
func (c *ConfigurableCorePool) Pool() *CorePool { return c.pool }

func (c *ConfigurableCorePool) lastTransitionId() uuid.UUID {
	if len(c.transitions) == 0 {
		return uuid.Nil
	}
	return c.transitions[len(c.transitions)-1].Id
}

// commit appends a Transition recording the operation, reassigns Id, runs
// the post-processor, and rolls everything back if the post-processor
// fails — the only way a transition that already mutated state gets
// undone without going through stepBack.
func (c *ConfigurableCorePool) commit(eventType EventType, inputs, outputs map[string]any, preImage *CorePool) error {
	prevId := c.Id
	newId := uuid.New()
	t := newTransition(c.lastTransitionId(), eventType, inputs, outputs, newId, preImage)
	c.transitions = append(c.transitions, t)
	c.Id = newId
	c.registerWithRoadmap()

	if c.postProcessor != nil {
		if err := c.postProcessor(c, t); err != nil {
			c.transitions = c.transitions[:len(c.transitions)-1]
			c.pool = preImage
			c.Id = prevId
			c.registerWithRoadmap()
			return wrapErr(ErrKindPostProcessorFail, "post-processor rejected transition", err)
		}
	}
	return nil
}

// registerWithRoadmap re-indexes c under its current Id. Every mutation that
// reassigns Id (commit, StepBack, Recover, Fork) must call this, or GetPool
// can only ever resolve the id the pool was constructed with.
func (c *ConfigurableCorePool) registerWithRoadmap() {
	if c.roadmap != nil {
		c.roadmap.RegisterPool(c)
	}
}

// Initialize forwards to the engine and records an INITIALIZE transition.
func (c *ConfigurableCorePool) Initialize(sqrtPriceX96 decimal.Decimal) error {
	preImage := c.pool.Clone()
	if err := c.pool.Initialize(sqrtPriceX96); err != nil {
		return err
	}
	return c.commit(EventInitialize,
		map[string]any{"sqrtPriceX96": sqrtPriceX96.String()},
		map[string]any{},
		preImage,
	)
}

// Mint forwards to the engine and records a MINT transition.
func (c *ConfigurableCorePool) Mint(owner string, tickLower, tickUpper int, amount decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	preImage := c.pool.Clone()
	amount0, amount1, err = c.pool.Mint(owner, tickLower, tickUpper, amount)
	if err != nil {
		c.pool = preImage
		return ZERO, ZERO, err
	}
	inputs := map[string]any{"owner": owner, "tickLower": tickLower, "tickUpper": tickUpper, "amount": amount.String()}
	outputs := map[string]any{"amount0": amount0.String(), "amount1": amount1.String()}
	if err := c.commit(EventMint, inputs, outputs, preImage); err != nil {
		return ZERO, ZERO, err
	}
	return amount0, amount1, nil
}

// Burn forwards to the engine and records a BURN transition.
func (c *ConfigurableCorePool) Burn(owner string, tickLower, tickUpper int, amount decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	preImage := c.pool.Clone()
	amount0, amount1, err = c.pool.Burn(owner, tickLower, tickUpper, amount)
	if err != nil {
		c.pool = preImage
		return ZERO, ZERO, err
	}
	inputs := map[string]any{"owner": owner, "tickLower": tickLower, "tickUpper": tickUpper, "amount": amount.String()}
	outputs := map[string]any{"amount0": amount0.String(), "amount1": amount1.String()}
	if err := c.commit(EventBurn, inputs, outputs, preImage); err != nil {
		return ZERO, ZERO, err
	}
	return amount0, amount1, nil
}

// Swap forwards to the engine and records a SWAP transition.
func (c *ConfigurableCorePool) Swap(zeroForOne bool, amountSpecified, sqrtPriceLimitX96 decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	preImage := c.pool.Clone()
	amount0, amount1, err = c.pool.Swap(zeroForOne, amountSpecified, sqrtPriceLimitX96)
	if err != nil {
		return ZERO, ZERO, err
	}
	inputs := map[string]any{"zeroForOne": zeroForOne, "amountSpecified": amountSpecified.String(), "sqrtPriceLimitX96": sqrtPriceLimitX96.String()}
	outputs := map[string]any{"amount0": amount0.String(), "amount1": amount1.String()}
	if err := c.commit(EventSwap, inputs, outputs, preImage); err != nil {
		return ZERO, ZERO, err
	}
	return amount0, amount1, nil
}

// Collect forwards to the engine and records a COLLECT transition.
func (c *ConfigurableCorePool) Collect(owner string, tickLower, tickUpper int, amount0Requested, amount1Requested decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	preImage := c.pool.Clone()
	amount0, amount1, err = c.pool.Collect(owner, tickLower, tickUpper, amount0Requested, amount1Requested)
	if err != nil {
		return ZERO, ZERO, err
	}
	inputs := map[string]any{"owner": owner, "tickLower": tickLower, "tickUpper": tickUpper}
	outputs := map[string]any{"amount0": amount0.String(), "amount1": amount1.String()}
	if err := c.commit(EventCollect, inputs, outputs, preImage); err != nil {
		return ZERO, ZERO, err
	}
	return amount0, amount1, nil
}

// QuerySwap runs a swap against a throwaway clone of the live pool and
// returns the resulting amounts without mutating anything or recording a
// transition — the dry-run primitive the swap replay driver (replay.go)
// uses to pick between an exact-in and exact-out interpretation of a
// recorded event, the same role the teacher's tryToDryRun plays inline.
func (c *ConfigurableCorePool) QuerySwap(zeroForOne bool, amountSpecified, sqrtPriceLimitX96 decimal.Decimal) (amount0, amount1 decimal.Decimal, err error) {
	clone := c.pool.Clone()
	return clone.Swap(zeroForOne, amountSpecified, sqrtPriceLimitX96)
}

// Fork deep-copies the live pool into a new ConfigurableCorePool with its
// own id, sharing no mutable storage with the original, and registers it
// with the same roadmap so recover and cross-pool inspection can find it.
func (c *ConfigurableCorePool) Fork() *ConfigurableCorePool {
	fork := &ConfigurableCorePool{
		pool:          c.pool.Clone(),
		Id:            uuid.New(),
		roadmap:       c.roadmap,
		store:         c.store,
		postProcessor: c.postProcessor,
	}
	forkTransition := newTransition(c.lastTransitionId(), EventFork, map[string]any{"parentPoolId": c.Id.String()}, map[string]any{}, fork.Id, c.pool.Clone())
	fork.transitions = []*Transition{forkTransition}
	fork.registerWithRoadmap()
	return fork
}

// TakeSnapshot deep-copies the current state into c.snapshot with a fresh
// id and registers it with the roadmap, without touching persistence.
func (c *ConfigurableCorePool) TakeSnapshot(description string) uuid.UUID {
	snap := takeSnapshot(c.pool, description)
	c.snapshot = snap
	if c.roadmap != nil {
		c.roadmap.RegisterSnapshot(snap)
	}
	return snap.Id
}

// StepBack undoes the most recent transition, restoring the pool to its
// pre-image byte-for-byte. Stepping back across a FORK boundary (the root
// transition of a forked pool's own log) is disallowed per spec §9: fork
// roots a new transition DAG, so its root behaves like NoTransition. The
// RECOVER root that Recover leaves behind is refused the same way.
func (c *ConfigurableCorePool) StepBack() error {
	if len(c.transitions) == 0 {
		return newErr(ErrKindNoTransition, "no transition to step back from")
	}
	last := c.transitions[len(c.transitions)-1]
	if last.EventType == EventFork && len(c.transitions) == 1 {
		return newErr(ErrKindNoTransition, "cannot step back across a fork boundary")
	}
	if last.EventType == EventRecover && len(c.transitions) == 1 {
		return newErr(ErrKindNoTransition, "cannot step back past a recover root")
	}
	c.pool = last.preImage.Clone()
	c.transitions = c.transitions[:len(c.transitions)-1]
	c.Id = last.ParentId
	c.registerWithRoadmap()
	return nil
}

// Recover replaces the live pool with a deep copy of the snapshot
// identified by snapshotId, resetting the transition log to a single
// RECOVER root. It looks the snapshot up via the roadmap, which checks
// memory before falling back to the persistent store.
func (c *ConfigurableCorePool) Recover(snapshotId uuid.UUID) error {
	if c.roadmap == nil {
		return newErr(ErrKindSnapshotNotFound, "no roadmap configured, cannot resolve snapshot id")
	}
	snap, err := c.roadmap.GetSnapshot(snapshotId)
	if err != nil {
		return err
	}
	restored, err := restoreFromSnapshot(snap)
	if err != nil {
		return err
	}
	c.pool = restored
	c.Id = snap.Id
	root := newTransition(uuid.Nil, EventRecover, map[string]any{"snapshotId": snapshotId.String()}, map[string]any{}, snap.Id, c.pool.Clone())
	c.transitions = []*Transition{root}
	c.registerWithRoadmap()
	return nil
}

// PersistSnapshot writes the current snapshot (taking one first if absent)
// to the persistent store and returns its id.
func (c *ConfigurableCorePool) PersistSnapshot() (uuid.UUID, error) {
	if c.store == nil {
		return uuid.Nil, newErr(ErrKindIOFailure, "no persistent store configured")
	}
	if c.snapshot == nil {
		c.TakeSnapshot("")
	}
	if err := c.store.Put(c.snapshot); err != nil {
		return uuid.Nil, err
	}
	return c.snapshot.Id, nil
}

// UpdatePostProcessor installs fn as the observer invoked after every
// successful transition.
func (c *ConfigurableCorePool) UpdatePostProcessor(fn PostProcessor) {
	c.postProcessor = fn
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithField("poolId", c.Id.String()).Debug("post-processor installed")
	}
}
