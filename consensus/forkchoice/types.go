package forkchoice

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// IngestStatus is the admission outcome of a header.
type IngestStatus uint8

const (
	// Accepted headers became tree nodes.
	Accepted IngestStatus = iota
	// Buffered headers wait in the orphan pool for their parent.
	Buffered
	// Rejected headers were dropped; IngestResult.Reason says why.
	Rejected
)

func (s IngestStatus) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Buffered:
		return "buffered"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// IngestResult describes everything a single IngestBlock call changed.
type IngestResult struct {
	Status IngestStatus
	// Reason is the validation error of a rejected header. For other statuses it is
	// ErrOrphanPoolFull when buffered blocks were evicted during the call, nil otherwise.
	Reason error
	// Inserted lists the header and any buffered descendants it resolved, in insertion order.
	Inserted []common.Hash
	// Evicted lists buffered blocks dropped from the orphan pool.
	Evicted []common.Hash
	// Finalized lists newly finalized blocks in ascending height.
	Finalized []common.Hash
	// Pruned lists non-canonical blocks removed after finalization.
	Pruned []common.Hash
	// Head is the canonical head after the call.
	Head common.Hash
}

// Checkpoint is a finalized block reference.
type Checkpoint struct {
	Hash   common.Hash
	Height uint64
}

// PrunedEvent is published when finalization makes non-canonical blocks prunable.
type PrunedEvent struct {
	Finalized Checkpoint
	Pruned    []common.Hash
}

// NodeInfo is a read-only view of a tree node.
type NodeInfo struct {
	Hash          common.Hash
	ParentHash    common.Hash
	Height        uint64
	Slot          types.Slot
	Producer      common.Address
	Weight        uint256.Int
	SubtreeWeight uint256.Int
	Children      []common.Hash
	Finalized     bool
}
