package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
	"go.opencensus.io/trace"
)

// IngestBlock admits a header into the block tree and persists what the call changed.
// Validation failures come back as a Rejected result; the error is reserved for calls the
// engine cannot process, including the consistency fault that halts it.
func (s *Service) IngestBlock(ctx context.Context, header *blocks.Header) (*forkchoice.IngestResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.IngestBlock")
	defer span.End()

	if err := s.checkHalted(); err != nil {
		return nil, err
	}
	res, ev, err := s.ingestBlock(ctx, header)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		// Published without the writer lock so subscribers may call back into the engine.
		s.prunedFeed.Send(ev)
	}
	return res, nil
}

func (s *Service) ingestBlock(ctx context.Context, header *blocks.Header) (*forkchoice.IngestResult, *forkchoice.PrunedEvent, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	res, err := s.forkChoice.IngestBlock(ctx, header)
	if err != nil {
		if forkchoice.IsConsistencyFault(err) {
			s.halt(err)
			return nil, nil, errors.Wrap(ErrConsensusHalted, err.Error())
		}
		return nil, nil, err
	}
	s.persistTree(ctx, res)
	if len(res.Finalized) == 0 {
		return res, nil, nil
	}
	cp := s.forkChoice.FinalizedCheckpoint()
	log.WithFields(logrus.Fields{
		"finalized": cp.Hash.Hex(),
		"height":    cp.Height,
		"pruned":    len(res.Pruned),
	}).Debug("Block ingestion advanced finality")
	return res, &forkchoice.PrunedEvent{Finalized: *cp, Pruned: res.Pruned}, nil
}

// CurrentHead returns the head of the canonical chain.
func (s *Service) CurrentHead(ctx context.Context) common.Hash {
	return s.forkChoice.Head(ctx)
}

// CanonicalChain returns the hashes from `from` to `to` inclusive, oldest first.
func (s *Service) CanonicalChain(ctx context.Context, from, to common.Hash) ([]common.Hash, error) {
	return s.forkChoice.CanonicalChain(ctx, from, to)
}

// FinalizedCheckpoint returns the highest finalized block.
func (s *Service) FinalizedCheckpoint() *forkchoice.Checkpoint {
	return s.forkChoice.FinalizedCheckpoint()
}

// SubscribePrunable streams the blocks made prunable by finalization. Events are sent after
// the writer lock is released; a subscriber that stops receiving still blocks the ingesting
// caller, so subscribers should use a buffered channel.
func (s *Service) SubscribePrunable(ch chan<- *forkchoice.PrunedEvent) event.Subscription {
	return s.prunedFeed.Subscribe(ch)
}

// ValidateBlockProducer fails with election.ErrInvalidProducer unless the header's producer
// was elected for its slot.
func (s *Service) ValidateBlockProducer(header *blocks.Header) error {
	return s.auth.ValidateBlockProducer(header)
}

// IsValidProducer reports whether the header's producer was elected for its slot.
func (s *Service) IsValidProducer(header *blocks.Header) bool {
	return s.auth.ValidateBlockProducer(header) == nil
}

// ProposerAt returns the validator elected for a slot of an epoch with a cached elector.
func (s *Service) ProposerAt(slot types.Slot) (common.Address, error) {
	e, err := s.auth.elector(slot)
	if err != nil {
		return common.Address{}, err
	}
	return e.ProposerAt(slot)
}
