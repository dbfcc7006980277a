package forkchoice

import (
	"bytes"
	"sort"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// Node is a block in the tree. Nodes live in the store's arena keyed by hash; parents and
// children are referenced by hash only. Everything but subtreeWeight and finalized is fixed
// at insertion.
type Node struct {
	hash          common.Hash
	parentHash    common.Hash
	height        uint64
	slot          types.Slot
	producer      common.Address
	weight        uint256.Int
	subtreeWeight uint256.Int
	children      mapset.Set
	finalized     bool
}

func newNode(hash, parent common.Hash, height uint64, slot types.Slot, producer common.Address, weight *uint256.Int) *Node {
	return &Node{
		hash:          hash,
		parentHash:    parent,
		height:        height,
		slot:          slot,
		producer:      producer,
		weight:        *weight,
		subtreeWeight: *weight,
		children:      mapset.NewThreadUnsafeSet(),
	}
}

// Hash of the block.
func (n *Node) Hash() common.Hash {
	return n.hash
}

// ParentHash of the block.
func (n *Node) ParentHash() common.Hash {
	return n.parentHash
}

// Height of the block.
func (n *Node) Height() uint64 {
	return n.height
}

// Slot of the block.
func (n *Node) Slot() types.Slot {
	return n.slot
}

// Producer of the block.
func (n *Node) Producer() common.Address {
	return n.producer
}

// SubtreeWeight returns a copy of the node's weight plus the weight of all its descendants.
func (n *Node) SubtreeWeight() *uint256.Int {
	w := n.subtreeWeight
	return &w
}

// Finalized reports whether the block is finalized.
func (n *Node) Finalized() bool {
	return n.finalized
}

// childHashes returns the node's children sorted by hash.
func (n *Node) childHashes() []common.Hash {
	res := make([]common.Hash, 0, n.children.Cardinality())
	for _, c := range n.children.ToSlice() {
		res = append(res, c.(common.Hash))
	}
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i][:], res[j][:]) < 0
	})
	return res
}

func (n *Node) info() *NodeInfo {
	return &NodeInfo{
		Hash:          n.hash,
		ParentHash:    n.parentHash,
		Height:        n.height,
		Slot:          n.slot,
		Producer:      n.producer,
		Weight:        n.weight,
		SubtreeWeight: n.subtreeWeight,
		Children:      n.childHashes(),
		Finalized:     n.finalized,
	}
}

// heavier reports whether a should be preferred over b as head candidate: larger subtree
// weight first, then the lexicographically smaller hash.
func heavier(a, b *Node) bool {
	if c := a.subtreeWeight.Cmp(&b.subtreeWeight); c != 0 {
		return c > 0
	}
	return bytes.Compare(a.hash[:], b.hash[:]) < 0
}
