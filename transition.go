package clmm

import (
	"time"

	"github.com/google/uuid"
)

// EventType names the kind of mutation a Transition records.
type EventType string

const (
	EventInitialize EventType = "INITIALIZE"
	EventMint       EventType = "MINT"
	EventBurn       EventType = "BURN"
	EventSwap       EventType = "SWAP"
	EventCollect    EventType = "COLLECT"
	EventFork       EventType = "FORK"
	EventSnapshot   EventType = "SNAPSHOT"
	EventRecover    EventType = "RECOVER"
)

// Transition is one edge in a pool's transition DAG (spec §3): it records
// what was asked for, what came back, and the pre/post state needed to
// undo it. preImage is unexported and never serialized into a Snapshot —
// it exists only to make stepBack possible, per spec §9's recommended
// pre-image strategy.
type Transition struct {
	Id         uuid.UUID
	ParentId   uuid.UUID
	EventType  EventType
	Inputs     map[string]any
	Outputs    map[string]any
	PostStateId uuid.UUID
	CreatedAt  time.Time

	preImage *CorePool
}

func newTransition(parentId uuid.UUID, eventType EventType, inputs, outputs map[string]any, postStateId uuid.UUID, preImage *CorePool) *Transition {
	return &Transition{
		Id:          uuid.New(),
		ParentId:    parentId,
		EventType:   eventType,
		Inputs:      inputs,
		Outputs:     outputs,
		PostStateId: postStateId,
		CreatedAt:   time.Now(),
		preImage:    preImage,
	}
}
