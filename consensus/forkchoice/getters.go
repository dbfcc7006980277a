package forkchoice

import (
	"bytes"
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// Head returns the canonical head: starting from the finalized block, the heaviest child is
// taken at every level, ties going to the smallest hash.
func (s *Store) Head(ctx context.Context) common.Hash {
	_, span := trace.StartSpan(ctx, "forkchoice.Head")
	defer span.End()

	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.head.hash
}

// CanonicalChain returns the hashes from `from` to `to` inclusive, in ascending height, by
// walking parent links back from `to`.
func (s *Store) CanonicalChain(ctx context.Context, from, to common.Hash) ([]common.Hash, error) {
	_, span := trace.StartSpan(ctx, "forkchoice.CanonicalChain")
	defer span.End()

	s.lock.RLock()
	defer s.lock.RUnlock()
	n, ok := s.nodes[to]
	if !ok {
		return nil, errors.Wrapf(ErrNilNode, "unknown block %s", trunc(to))
	}
	var chain []common.Hash
	for {
		chain = append(chain, n.hash)
		if n.hash == from {
			break
		}
		parent, ok := s.nodes[n.parentHash]
		if !ok || n.hash == s.genesis {
			return nil, errors.Wrapf(ErrUnknownAncestor, "%s is not an ancestor of %s", trunc(from), trunc(to))
		}
		n = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Tips returns the leaves of the block tree sorted by hash.
func (s *Store) Tips() []common.Hash {
	s.lock.RLock()
	defer s.lock.RUnlock()
	var tips []common.Hash
	for h, n := range s.nodes {
		if n.children.Cardinality() == 0 {
			tips = append(tips, h)
		}
	}
	sort.Slice(tips, func(i, j int) bool {
		return bytes.Compare(tips[i][:], tips[j][:]) < 0
	})
	return tips
}

// HasNode returns true if the block is in the tree.
func (s *Store) HasNode(hash common.Hash) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	_, ok := s.nodes[hash]
	return ok
}

// Node returns a copy of the tree node for hash.
func (s *Store) Node(hash common.Hash) (*NodeInfo, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	n, ok := s.nodes[hash]
	if !ok {
		return nil, ErrNilNode
	}
	return n.info(), nil
}

// NodeCount returns the number of nodes in the tree.
func (s *Store) NodeCount() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.nodes)
}

// OrphanCount returns the number of buffered blocks.
func (s *Store) OrphanCount() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.orphans.len()
}

// IsCanonical returns true if the block is an ancestor of, or equal to, the head.
func (s *Store) IsCanonical(hash common.Hash) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	n, ok := s.nodes[hash]
	if !ok {
		return false
	}
	a, err := s.ancestorAtHeight(s.head, n.height)
	return err == nil && a.hash == hash
}

// AncestorAtHeight returns the ancestor of hash at the given height.
func (s *Store) AncestorAtHeight(hash common.Hash, height uint64) (common.Hash, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	n, ok := s.nodes[hash]
	if !ok {
		return common.Hash{}, errors.Wrapf(ErrNilNode, "unknown block %s", trunc(hash))
	}
	a, err := s.ancestorAtHeight(n, height)
	if err != nil {
		return common.Hash{}, err
	}
	return a.hash, nil
}

func (s *Store) ancestorAtHeight(n *Node, height uint64) (*Node, error) {
	if height > n.height {
		return nil, errors.Wrapf(ErrUnknownAncestor, "height %d above block height %d", height, n.height)
	}
	for n.height > height {
		parent, ok := s.nodes[n.parentHash]
		if !ok || n.hash == s.genesis {
			return nil, errors.Wrapf(ErrUnknownAncestor, "no ancestor at height %d", height)
		}
		n = parent
	}
	return n, nil
}

// FinalizedCheckpoint returns the latest finalized block.
func (s *Store) FinalizedCheckpoint() *Checkpoint {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return &Checkpoint{Hash: s.finalized.hash, Height: s.finalized.height}
}

// Genesis returns the hash of the tree root.
func (s *Store) Genesis() common.Hash {
	return s.genesis
}
