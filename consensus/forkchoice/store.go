package forkchoice

import (
	"context"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/config/params"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"go.opencensus.io/trace"
)

// prunedCacheSize bounds how many pruned hashes are remembered to reject late deliveries.
const prunedCacheSize = 1 << 14

var _ ForkChoicer = (*Store)(nil)

// Store is a GHOST fork choice store. Nodes are kept in an arena keyed by hash and every
// node caches the weight of its subtree, updated along the ancestor path on insertion.
type Store struct {
	cfg           *params.ConsensusConfig
	lock          sync.RWMutex
	authority     Authority
	weights       FinalityWeights
	genesis       common.Hash
	nodes         map[common.Hash]*Node
	finalized     *Node
	head          *Node
	confirmations map[common.Hash]mapset.Set // block hash -> producers of blocks confirming it.
	orphans       *orphanPool
	pruned        *lru.Cache
	currentSlot   types.Slot
	prunedFeed    event.Feed
}

// New initializes a fork choice store rooted at genesis. The genesis block starts finalized
// and carries no weight.
func New(cfg *params.ConsensusConfig, genesis *blocks.Header, authority Authority) (*Store, error) {
	if genesis == nil {
		return nil, blocks.ErrNilHeader
	}
	if genesis.Hash == (common.Hash{}) {
		return nil, errors.Wrap(ErrInvalidBlock, "genesis hash is zero")
	}
	orphans, err := newOrphanPool(int(cfg.OrphanPoolPerParentLimit), int(cfg.OrphanPoolLimit))
	if err != nil {
		return nil, err
	}
	pruned, err := lru.New(prunedCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create pruned cache")
	}
	g := newNode(genesis.Hash, genesis.ParentHash, genesis.Height, genesis.Slot, genesis.Producer, uint256.NewInt(0))
	g.finalized = true
	s := &Store{
		cfg:           cfg,
		authority:     authority,
		genesis:       g.hash,
		nodes:         map[common.Hash]*Node{g.hash: g},
		finalized:     g,
		head:          g,
		confirmations: make(map[common.Hash]mapset.Set),
		orphans:       orphans,
		pruned:        pruned,
		currentSlot:   genesis.Slot,
	}
	s.updateMetrics()
	return s, nil
}

// SetAuthority sets the producer check and weight source used for new blocks.
func (s *Store) SetAuthority(a Authority) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.authority = a
}

// SetFinalityWeights sets the stake distribution used to count finality confirmations.
// Finality is not tracked while it is unset.
func (s *Store) SetFinalityWeights(w FinalityWeights) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.weights = w
}

// SetCurrentSlot records the wall clock slot, used to age buffered blocks.
func (s *Store) SetCurrentSlot(slot types.Slot) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.currentSlot = slot
}

// SubscribePruned registers a channel receiving an event each time finalization
// makes blocks prunable.
func (s *Store) SubscribePruned(ch chan<- *PrunedEvent) event.Subscription {
	return s.prunedFeed.Subscribe(ch)
}

// IngestBlock admits a header into the block tree. Validation failures are reported through
// the result, the error return is reserved for calls that cannot be processed at all and for
// consistency faults.
func (s *Store) IngestBlock(ctx context.Context, header *blocks.Header) (*IngestResult, error) {
	ctx, span := trace.StartSpan(ctx, "forkchoice.IngestBlock")
	defer span.End()

	if header == nil {
		return nil, blocks.ErrNilHeader
	}
	s.lock.Lock()
	res, ev, err := s.ingest(ctx, header)
	s.lock.Unlock()
	if ev != nil {
		s.prunedFeed.Send(ev)
	}
	return res, err
}

func (s *Store) ingest(ctx context.Context, header *blocks.Header) (*IngestResult, *PrunedEvent, error) {
	if s.authority == nil {
		return nil, nil, ErrNoAuthority
	}
	processedBlockCount.Inc()
	prevFinalized := s.finalized
	res := &IngestResult{}
	defer func() {
		res.Head = s.head.hash
	}()

	if err := s.precheck(header); err != nil {
		return s.reject(res, header, err), nil, nil
	}
	if err := s.authority.ValidateBlockProducer(header); err != nil {
		return s.reject(res, header, err), nil, nil
	}

	parent, ok := s.nodes[header.ParentHash]
	if !ok {
		s.orphans.add(header, s.currentSlot)
		res.Status = Buffered
		log.WithFields(logrus.Fields{
			"hash":   trunc(header.Hash),
			"parent": trunc(header.ParentHash),
			"height": header.Height,
		}).Debug("Buffered block with unknown parent")
	} else {
		if err := s.insertNode(ctx, header, parent, res); err != nil {
			if IsConsistencyFault(err) {
				return nil, nil, err
			}
			return s.reject(res, header, err), nil, nil
		}
		res.Status = Accepted
		if err := s.resolveOrphans(ctx, header.Hash, res); err != nil {
			return nil, nil, err
		}
	}
	s.collectEvicted(res)
	s.updateHead()
	s.updateMetrics()
	return res, s.prunedEvent(prevFinalized, res.Pruned), nil
}

func (s *Store) precheck(header *blocks.Header) error {
	switch {
	case header.Hash == (common.Hash{}):
		return errors.Wrap(ErrInvalidBlock, "zero block hash")
	case header.Hash == header.ParentHash:
		return errors.Wrap(ErrInvalidBlock, "block is its own parent")
	case s.nodes[header.Hash] != nil, s.orphans.has(header.Hash), s.pruned.Contains(header.Hash):
		return ErrBlockKnown
	case s.pruned.Contains(header.ParentHash):
		return errors.Wrap(ErrNotDescendantOfFinalized, "parent was pruned")
	case header.Height <= s.finalized.height:
		return errors.Wrapf(ErrNotDescendantOfFinalized, "height %d at or below finalized height %d",
			header.Height, s.finalized.height)
	}
	return nil
}

func (s *Store) reject(res *IngestResult, header *blocks.Header, err error) *IngestResult {
	rejectedBlockCount.Inc()
	log.WithError(err).WithFields(logrus.Fields{
		"hash":     trunc(header.Hash),
		"height":   header.Height,
		"slot":     header.Slot,
		"producer": header.Producer.Hex(),
	}).Debug("Rejected block")
	res.Status = Rejected
	res.Reason = err
	return res
}

// insertNode adds header under parent, propagates its weight to every ancestor and
// finalizes any ancestor the new block confirms past the threshold.
func (s *Store) insertNode(ctx context.Context, header *blocks.Header, parent *Node, res *IngestResult) error {
	if header.Height != parent.height+1 {
		return errors.Wrapf(ErrInvalidBlock, "height %d does not follow parent height %d", header.Height, parent.height)
	}
	if header.Slot <= parent.slot {
		return errors.Wrapf(ErrInvalidBlock, "slot %d is not after parent slot %d", header.Slot, parent.slot)
	}
	weight, err := s.authority.ProducerWeight(header)
	if err != nil {
		return errors.Wrap(err, "could not compute producer weight")
	}
	n := newNode(header.Hash, header.ParentHash, header.Height, header.Slot, header.Producer, weight)
	s.nodes[n.hash] = n
	parent.children.Add(n.hash)
	res.Inserted = append(res.Inserted, n.hash)

	target := s.finalityTarget(s.propagate(n))
	if target == nil {
		return nil
	}
	finalized, pruned, err := s.finalize(ctx, target)
	if err != nil {
		return err
	}
	res.Finalized = append(res.Finalized, finalized...)
	res.Pruned = append(res.Pruned, pruned...)
	return nil
}

// resolveOrphans inserts buffered descendants of hash, breadth first.
func (s *Store) resolveOrphans(ctx context.Context, hash common.Hash, res *IngestResult) error {
	queue := []common.Hash{hash}
	for len(queue) > 0 {
		parentHash := queue[0]
		queue = queue[1:]
		for _, child := range s.orphans.take(parentHash) {
			parent, ok := s.nodes[parentHash]
			if !ok {
				// The parent was pruned by a finalization earlier in this loop.
				continue
			}
			err := s.precheck(child)
			if err == nil {
				err = s.authority.ValidateBlockProducer(child)
			}
			if err == nil {
				err = s.insertNode(ctx, child, parent, res)
			}
			if IsConsistencyFault(err) {
				return err
			}
			if err != nil {
				log.WithError(err).WithField("hash", trunc(child.Hash)).Debug("Dropped buffered block")
				continue
			}
			queue = append(queue, child.Hash)
		}
	}
	return nil
}

func (s *Store) collectEvicted(res *IngestResult) {
	evicted := s.orphans.drainEvicted()
	if len(evicted) == 0 {
		return
	}
	res.Evicted = append(res.Evicted, evicted...)
	if res.Reason == nil {
		res.Reason = ErrOrphanPoolFull
	}
	evictedOrphanCount.Add(float64(len(evicted)))
	log.WithError(ErrOrphanPoolFull).WithFields(logrus.Fields{
		"evicted":   len(evicted),
		"remaining": s.orphans.len(),
	}).Warn("Evicted buffered blocks")
}

// propagate adds the node's weight to the subtree weight of every ancestor up to genesis
// and records the node's producer as a confirmer of every non-finalized ancestor at least
// FinalityConfirmationDepth blocks below it. It returns the ancestors that gained a confirmer,
// highest first.
func (s *Store) propagate(n *Node) []*Node {
	var changed []*Node
	confirming := true
	for a := s.nodes[n.parentHash]; a != nil; a = s.nodes[a.parentHash] {
		a.subtreeWeight.Add(&a.subtreeWeight, &n.weight)
		if confirming && a.finalized {
			confirming = false
		}
		if confirming && n.height-a.height >= s.cfg.FinalityConfirmationDepth {
			producers, ok := s.confirmations[a.hash]
			if !ok {
				producers = mapset.NewThreadUnsafeSet()
				s.confirmations[a.hash] = producers
			}
			if producers.Add(n.producer) {
				changed = append(changed, a)
			} else {
				// Every ancestor below already counts this producer.
				confirming = false
			}
		}
		if a.hash == s.genesis {
			break
		}
	}
	return changed
}

// finalityTarget returns the highest candidate whose confirming producers hold the
// configured supermajority of active stake.
func (s *Store) finalityTarget(candidates []*Node) *Node {
	if s.weights == nil || len(candidates) == 0 {
		return nil
	}
	total := s.weights.TotalActiveStake()
	if total.IsZero() {
		return nil
	}
	threshold := new(uint256.Int).Mul(total, uint256.NewInt(s.cfg.FinalityThresholdNumerator))
	for _, c := range candidates {
		stake := s.confirmedStake(c.hash)
		stake.Mul(stake, uint256.NewInt(s.cfg.FinalityThresholdDenominator))
		if !stake.Lt(threshold) {
			return c
		}
	}
	return nil
}

func (s *Store) confirmedStake(hash common.Hash) *uint256.Int {
	sum := new(uint256.Int)
	producers, ok := s.confirmations[hash]
	if !ok {
		return sum
	}
	for _, p := range producers.ToSlice() {
		stake, ok := s.weights.ActiveStake(p.(common.Address))
		if !ok {
			continue
		}
		sum.Add(sum, &stake)
	}
	return sum
}

// updateHead descends from the finalized block into the heaviest child at every level.
// After pruning, the finalized block's ancestors have a single child each, so this is the
// same walk as one starting at genesis.
func (s *Store) updateHead() {
	n := s.finalized
	for n.children.Cardinality() > 0 {
		var best *Node
		for _, c := range n.children.ToSlice() {
			child := s.nodes[c.(common.Hash)]
			if best == nil || heavier(child, best) {
				best = child
			}
		}
		n = best
	}
	if n != s.head {
		headChangesCount.Inc()
		log.WithFields(logrus.Fields{
			"hash":          trunc(n.hash),
			"height":        n.height,
			"subtreeWeight": n.subtreeWeight.ToBig().String(),
		}).Debug("Head changed")
	}
	s.head = n
}

func (s *Store) updateMetrics() {
	headHeight.Set(float64(s.head.height))
	finalizedHeight.Set(float64(s.finalized.height))
	nodeCount.Set(float64(len(s.nodes)))
	orphanCount.Set(float64(s.orphans.len()))
}

// PruneOrphans evicts buffered blocks that waited longer than OrphanMaxAgeSlots, that can no
// longer attach above the finalized block, or that claim a height too far ahead of the head.
func (s *Store) PruneOrphans(ctx context.Context) []common.Hash {
	_, span := trace.StartSpan(ctx, "forkchoice.PruneOrphans")
	defer span.End()

	s.lock.Lock()
	defer s.lock.Unlock()
	finalizedHeight, headHeight, now := s.finalized.height, s.head.height, s.currentSlot
	s.orphans.evictWhere(func(o *orphan) bool {
		return now.SubSlot(o.arrival) > s.cfg.OrphanMaxAgeSlots ||
			o.header.Height <= finalizedHeight ||
			o.header.Height > headHeight+s.cfg.OrphanMaxHeightLead
	})
	evicted := s.orphans.drainEvicted()
	if len(evicted) > 0 {
		evictedOrphanCount.Add(float64(len(evicted)))
		log.WithField("evicted", len(evicted)).Debug("Pruned stale buffered blocks")
	}
	s.updateMetrics()
	return evicted
}

func trunc(h common.Hash) string {
	return fmt.Sprintf("%#x", h[:4])
}
