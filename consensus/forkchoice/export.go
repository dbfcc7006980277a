package forkchoice

import (
	"bytes"
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tessera-chain/tessera/config/params"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// NodeRecord is the storable form of a tree node. Subtree weights are derived on restore.
type NodeRecord struct {
	Hash       common.Hash
	ParentHash common.Hash
	Height     uint64
	Slot       types.Slot
	Producer   common.Address
	Weight     uint256.Int
}

// TreeExport is a self-contained copy of the block tree.
type TreeExport struct {
	Genesis   NodeRecord
	Finalized common.Hash
	// Nodes holds every non-genesis node ordered by height, then hash.
	Nodes []NodeRecord
}

// Export copies the block tree. Buffered blocks and finality confirmations are not included.
func (s *Store) Export() *TreeExport {
	s.lock.RLock()
	defer s.lock.RUnlock()
	exp := &TreeExport{
		Genesis:   s.nodes[s.genesis].record(),
		Finalized: s.finalized.hash,
		Nodes:     make([]NodeRecord, 0, len(s.nodes)-1),
	}
	for h, n := range s.nodes {
		if h == s.genesis {
			continue
		}
		exp.Nodes = append(exp.Nodes, n.record())
	}
	sortRecords(exp.Nodes)
	return exp
}

// Restore rebuilds a store from an export. Nodes are re-linked and their weights propagated,
// then the exported finalized block is finalized again.
func Restore(ctx context.Context, cfg *params.ConsensusConfig, exp *TreeExport, authority Authority) (*Store, error) {
	if exp == nil {
		return nil, errors.New("nil tree export")
	}
	g := exp.Genesis
	s, err := New(cfg, &blocks.Header{
		Hash:       g.Hash,
		ParentHash: g.ParentHash,
		Height:     g.Height,
		Slot:       g.Slot,
		Producer:   g.Producer,
	}, authority)
	if err != nil {
		return nil, err
	}
	records := make([]NodeRecord, len(exp.Nodes))
	copy(records, exp.Nodes)
	sortRecords(records)

	s.lock.Lock()
	defer s.lock.Unlock()
	for i := range records {
		r := &records[i]
		if _, ok := s.nodes[r.Hash]; ok {
			return nil, errors.Wrapf(ErrBlockKnown, "duplicate record %s", trunc(r.Hash))
		}
		parent, ok := s.nodes[r.ParentHash]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownParent, "record %s", trunc(r.Hash))
		}
		if r.Height != parent.height+1 {
			return nil, errors.Wrapf(ErrInvalidBlock, "record %s height %d under parent height %d",
				trunc(r.Hash), r.Height, parent.height)
		}
		n := newNode(r.Hash, r.ParentHash, r.Height, r.Slot, r.Producer, &r.Weight)
		s.nodes[n.hash] = n
		parent.children.Add(n.hash)
		for a := parent; a != nil; a = s.nodes[a.parentHash] {
			a.subtreeWeight.Add(&a.subtreeWeight, &n.weight)
			if a.hash == s.genesis {
				break
			}
		}
	}
	if exp.Finalized != s.genesis {
		target, ok := s.nodes[exp.Finalized]
		if !ok {
			return nil, errors.Wrapf(ErrNilNode, "unknown finalized block %s", trunc(exp.Finalized))
		}
		if _, _, err := s.finalize(ctx, target); err != nil {
			return nil, err
		}
	}
	s.updateHead()
	s.updateMetrics()
	return s, nil
}

func (n *Node) record() NodeRecord {
	return NodeRecord{
		Hash:       n.hash,
		ParentHash: n.parentHash,
		Height:     n.height,
		Slot:       n.slot,
		Producer:   n.producer,
		Weight:     n.weight,
	}
}

func sortRecords(records []NodeRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Height != records[j].Height {
			return records[i].Height < records[j].Height
		}
		return bytes.Compare(records[i].Hash[:], records[j].Hash[:]) < 0
	})
}

// Record returns the storable form of the node.
func (i *NodeInfo) Record() NodeRecord {
	return NodeRecord{
		Hash:       i.Hash,
		ParentHash: i.ParentHash,
		Height:     i.Height,
		Slot:       i.Slot,
		Producer:   i.Producer,
		Weight:     i.Weight,
	}
}
