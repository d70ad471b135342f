package clmm

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SnapshotStore is the persistent snapshot store spec §6 describes as an
// external collaborator: key-value by UUID, storing the full Snapshot
// record. ConfigurableCorePool.PersistSnapshot and Roadmap.GetSnapshot are
// its only callers.
type SnapshotStore interface {
	Get(id uuid.UUID) (*Snapshot, error)
	Put(snap *Snapshot) error
}

// snapshotRow is the relational row layout spec §6 suggests: scalar columns
// for everything but the tick and position tables, which are stored as a
// JSON blob the way the teacher's TokenPositionManager stores its indices
// (GormDataType/Scan/Value over a LONGTEXT column).
type snapshotRow struct {
	gorm.Model
	SnapshotID  string `gorm:"uniqueIndex"`
	Description string

	Token0Symbol string
	Token1Symbol string
	FeePips      uint32
	TickSpacing  int

	SqrtPriceX96         string
	TickCurrent          int
	Liquidity            string
	FeeGrowthGlobal0X128 string
	FeeGrowthGlobal1X128 string

	TicksBlob     []byte `gorm:"type:LONGTEXT"`
	PositionsBlob []byte `gorm:"type:LONGTEXT"`

	Checksum string

	SnapshotCreatedAt time.Time
}

func (snapshotRow) TableName() string { return "pool_snapshots" }

// GormSnapshotStore is the sqlite-backed SnapshotStore, adapted from the
// teacher's CorePool.Flush(db *gorm.DB) pattern: gorm.io/gorm over
// glebarez/sqlite, a pure-Go driver so the module needs no cgo toolchain.
type GormSnapshotStore struct {
	db *gorm.DB
}

// OpenGormSnapshotStore opens (creating if absent) a sqlite database at
// path and migrates the snapshot table.
func OpenGormSnapshotStore(path string) (*GormSnapshotStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, wrapErr(ErrKindIOFailure, "open snapshot store", err)
	}
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, wrapErr(ErrKindIOFailure, "migrate snapshot store", err)
	}
	return &GormSnapshotStore{db: db}, nil
}

// Put writes snap as a single-row insert, the atomicity spec §5 requires
// of the persistent store.
func (s *GormSnapshotStore) Put(snap *Snapshot) error {
	ticksBlob, err := json.Marshal(snap.Ticks)
	if err != nil {
		return wrapErr(ErrKindCorrupt, "marshal ticks", err)
	}
	positionsBlob, err := json.Marshal(snap.Positions)
	if err != nil {
		return wrapErr(ErrKindCorrupt, "marshal positions", err)
	}

	checksum := snap.Checksum()

	row := &snapshotRow{
		SnapshotID:           snap.Id.String(),
		Description:          snap.Description,
		Token0Symbol:         snap.Config.Token0Symbol,
		Token1Symbol:         snap.Config.Token1Symbol,
		FeePips:              uint32(snap.Config.FeePips),
		TickSpacing:          snap.Config.TickSpacing,
		SqrtPriceX96:         snap.SqrtPriceX96.String(),
		TickCurrent:          snap.TickCurrent,
		Liquidity:            snap.Liquidity.String(),
		FeeGrowthGlobal0X128: snap.FeeGrowthGlobal0X128.String(),
		FeeGrowthGlobal1X128: snap.FeeGrowthGlobal1X128.String(),
		TicksBlob:            ticksBlob,
		PositionsBlob:        positionsBlob,
		Checksum:             hex.EncodeToString(checksum[:]),
		SnapshotCreatedAt:    snap.CreatedAt,
	}
	if err := s.db.Create(row).Error; err != nil {
		return wrapErr(ErrKindIOFailure, "insert snapshot row", err)
	}
	return nil
}

// Get reads the snapshot back by id, failing SnapshotNotFound on a miss and
// Corrupt on any decode failure.
func (s *GormSnapshotStore) Get(id uuid.UUID) (*Snapshot, error) {
	var row snapshotRow
	err := s.db.Where("snapshot_id = ?", id.String()).First(&row).Error
	if err != nil {
		return nil, newErr(ErrKindSnapshotNotFound, "snapshot "+id.String()+" not found in store")
	}

	var ticks []tickSnapshot
	if err := json.Unmarshal(row.TicksBlob, &ticks); err != nil {
		return nil, wrapErr(ErrKindCorrupt, "unmarshal ticks", err)
	}
	var positions []positionSnapshot
	if err := json.Unmarshal(row.PositionsBlob, &positions); err != nil {
		return nil, wrapErr(ErrKindCorrupt, "unmarshal positions", err)
	}

	sqrtPriceX96, err := decimal.NewFromString(row.SqrtPriceX96)
	if err != nil {
		return nil, wrapErr(ErrKindCorrupt, "parse sqrtPriceX96", err)
	}
	liquidity, err := decimal.NewFromString(row.Liquidity)
	if err != nil {
		return nil, wrapErr(ErrKindCorrupt, "parse liquidity", err)
	}
	feeGrowth0, err := decimal.NewFromString(row.FeeGrowthGlobal0X128)
	if err != nil {
		return nil, wrapErr(ErrKindCorrupt, "parse feeGrowthGlobal0X128", err)
	}
	feeGrowth1, err := decimal.NewFromString(row.FeeGrowthGlobal1X128)
	if err != nil {
		return nil, wrapErr(ErrKindCorrupt, "parse feeGrowthGlobal1X128", err)
	}

	snap := &Snapshot{
		Id:          id,
		Description: row.Description,
		Config: PoolConfig{
			Token0Symbol: row.Token0Symbol,
			Token1Symbol: row.Token1Symbol,
			FeePips:      FeeAmount(row.FeePips),
			TickSpacing:  row.TickSpacing,
		},
		SqrtPriceX96:         sqrtPriceX96,
		TickCurrent:          row.TickCurrent,
		Liquidity:            liquidity,
		FeeGrowthGlobal0X128: feeGrowth0,
		FeeGrowthGlobal1X128: feeGrowth1,
		Ticks:                ticks,
		Positions:            positions,
		CreatedAt:            row.SnapshotCreatedAt,
	}

	gotChecksum := snap.Checksum()
	if hex.EncodeToString(gotChecksum[:]) != row.Checksum {
		return nil, newErr(ErrKindCorrupt, "snapshot "+id.String()+" failed checksum verification")
	}
	return snap, nil
}
