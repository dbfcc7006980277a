package forkchoice

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// Finalize marks hash and its ancestors finalized, as when applying a checkpoint recovered
// from storage or agreed out of band. Finalizing a block that does not extend the current
// finalized block is a consistency fault.
func (s *Store) Finalize(ctx context.Context, hash common.Hash) (*PrunedEvent, error) {
	ctx, span := trace.StartSpan(ctx, "forkchoice.Finalize")
	defer span.End()

	s.lock.Lock()
	prev := s.finalized
	target, ok := s.nodes[hash]
	if !ok {
		s.lock.Unlock()
		if s.pruned.Contains(hash) {
			return nil, errors.Wrapf(ErrConflictingFinalizedBlocks, "block %s was pruned", trunc(hash))
		}
		return nil, errors.Wrapf(ErrNilNode, "cannot finalize %s", trunc(hash))
	}
	_, pruned, err := s.finalize(ctx, target)
	if err != nil {
		s.lock.Unlock()
		return nil, err
	}
	s.updateHead()
	s.updateMetrics()
	ev := s.prunedEvent(prev, pruned)
	s.lock.Unlock()

	if ev != nil {
		s.prunedFeed.Send(ev)
	}
	return ev, nil
}

// finalize marks target and its non-finalized ancestors finalized and removes every branch
// that forks off the newly finalized path. It returns the finalized hashes in ascending
// height and the pruned hashes.
func (s *Store) finalize(ctx context.Context, target *Node) ([]common.Hash, []common.Hash, error) {
	_, span := trace.StartSpan(ctx, "forkchoice.finalize")
	defer span.End()

	if target.finalized {
		return nil, nil, nil
	}
	var path []*Node
	n := target
	for n != nil && !n.finalized {
		path = append(path, n)
		n = s.nodes[n.parentHash]
	}
	if n != s.finalized {
		return nil, nil, errors.Wrapf(ErrConflictingFinalizedBlocks,
			"block %s at height %d does not descend from finalized block %s at height %d",
			trunc(target.hash), target.height, trunc(s.finalized.hash), s.finalized.height)
	}

	finalized := make([]common.Hash, len(path))
	for i, p := range path {
		p.finalized = true
		delete(s.confirmations, p.hash)
		finalized[len(path)-1-i] = p.hash
	}

	// Walk from the target down to genesis. Between the target and the previous finalized
	// block every child off the path is pruned; the removed weight is subtracted from every
	// node below it.
	var (
		pruned  []common.Hash
		removed uint256.Int
	)
	child := target
	for a := s.nodes[target.parentHash]; a != nil; a = s.nodes[a.parentHash] {
		if child != nil {
			for _, c := range a.children.ToSlice() {
				h := c.(common.Hash)
				if h == child.hash {
					continue
				}
				sibling := s.nodes[h]
				removed.Add(&removed, &sibling.subtreeWeight)
				pruned = append(pruned, s.removeSubtree(sibling)...)
				a.children.Remove(h)
			}
		}
		a.subtreeWeight.Sub(&a.subtreeWeight, &removed)
		if a == s.finalized {
			child = nil
		} else if child != nil {
			child = a
		}
		if a.hash == s.genesis {
			break
		}
	}
	s.finalized = target
	prunedCount.Add(float64(len(pruned)))

	log.WithFields(logrus.Fields{
		"hash":   trunc(target.hash),
		"height": target.height,
		"pruned": len(pruned),
	}).Info("Finalized block")
	return finalized, pruned, nil
}

// removeSubtree deletes root and all of its descendants from the arena.
func (s *Store) removeSubtree(root *Node) []common.Hash {
	var removed []common.Hash
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range n.children.ToSlice() {
			if child, ok := s.nodes[c.(common.Hash)]; ok {
				stack = append(stack, child)
			}
		}
		delete(s.nodes, n.hash)
		delete(s.confirmations, n.hash)
		s.pruned.Add(n.hash, struct{}{})
		removed = append(removed, n.hash)
	}
	return removed
}

func (s *Store) prunedEvent(prev *Node, pruned []common.Hash) *PrunedEvent {
	if s.finalized == prev {
		return nil
	}
	return &PrunedEvent{
		Finalized: Checkpoint{Hash: s.finalized.hash, Height: s.finalized.height},
		Pruned:    pruned,
	}
}
