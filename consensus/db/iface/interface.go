// Package iface defines the storage collaborator interface of the consensus core,
// also containing a scoped ReadOnlyDatabase.
package iface

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/common"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
	"github.com/tessera-chain/tessera/consensus/slashing"
	"github.com/tessera-chain/tessera/consensus/validators"
)

// ReadOnlyDatabase defines a struct which only has read access to database methods.
type ReadOnlyDatabase interface {
	// Validator set related methods.
	ValidatorSet(ctx context.Context) (*validators.Snapshot, error)
	EpochSnapshot(ctx context.Context, epoch types.Epoch) (*validators.Snapshot, error)
	// Block tree related methods.
	HasNode(ctx context.Context, hash common.Hash) bool
	BlockTree(ctx context.Context) (*forkchoice.TreeExport, error)
	FinalizedCheckpoint(ctx context.Context) (*forkchoice.Checkpoint, error)
	// Slashing audit methods.
	SlashingRecords(ctx context.Context) ([]slashing.Record, error)

	DatabasePath() string
}

// Database interface with full access.
type Database interface {
	io.Closer
	ReadOnlyDatabase

	SaveValidatorSet(ctx context.Context, snap *validators.Snapshot) error
	SaveEpochSnapshot(ctx context.Context, snap *validators.Snapshot) error
	SaveGenesis(ctx context.Context, genesis forkchoice.NodeRecord) error
	SaveNodes(ctx context.Context, nodes []forkchoice.NodeRecord) error
	DeleteNodes(ctx context.Context, hashes []common.Hash) error
	SaveFinalizedCheckpoint(ctx context.Context, checkpoint *forkchoice.Checkpoint) error
	SaveSlashingRecords(ctx context.Context, records []slashing.Record) error

	ClearDB() error
}
