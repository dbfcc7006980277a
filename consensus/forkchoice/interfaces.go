package forkchoice

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// ForkChoicer represents the full fork choice interface composed of all the sub-interfaces.
type ForkChoicer interface {
	HeadRetriever  // to compute head.
	BlockProcessor // to track new blocks for fork choice.
	Getter         // to retrieve fork choice information.
	Setter         // to set fork choice information.
}

// HeadRetriever retrieves the canonical head and chain.
type HeadRetriever interface {
	Head(ctx context.Context) common.Hash
	CanonicalChain(ctx context.Context, from, to common.Hash) ([]common.Hash, error)
	Tips() []common.Hash
}

// BlockProcessor admits headers into the block tree.
type BlockProcessor interface {
	IngestBlock(ctx context.Context, header *blocks.Header) (*IngestResult, error)
	PruneOrphans(ctx context.Context) []common.Hash
}

// Getter returns fork choice related information.
type Getter interface {
	HasNode(hash common.Hash) bool
	Node(hash common.Hash) (*NodeInfo, error)
	NodeCount() int
	OrphanCount() int
	IsCanonical(hash common.Hash) bool
	AncestorAtHeight(hash common.Hash, height uint64) (common.Hash, error)
	FinalizedCheckpoint() *Checkpoint
	Genesis() common.Hash
	Export() *TreeExport
}

// Setter sets fork choice related information.
type Setter interface {
	SetAuthority(a Authority)
	SetFinalityWeights(w FinalityWeights)
	SetCurrentSlot(slot types.Slot)
	Finalize(ctx context.Context, hash common.Hash) (*PrunedEvent, error)
	SubscribePruned(ch chan<- *PrunedEvent) event.Subscription
}

// Authority decides whether a header's producer was entitled to the slot and with what weight.
type Authority interface {
	ValidateBlockProducer(header *blocks.Header) error
	ProducerWeight(header *blocks.Header) (*uint256.Int, error)
}

// FinalityWeights supplies the stake used to decide finality.
type FinalityWeights interface {
	TotalActiveStake() *uint256.Int
	ActiveStake(addr common.Address) (uint256.Int, bool)
}
