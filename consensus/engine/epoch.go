package engine

import (
	"context"

	"github.com/pkg/errors"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/rotation"
	"github.com/tessera-chain/tessera/consensus/validators"
	"go.opencensus.io/trace"
)

// ProcessEpochTransition applies queued evidence and moves the validator set to newEpoch.
// The returned snapshot becomes the committed state and the source of the new epoch's
// elections. Repeating the current epoch returns an empty result.
func (s *Service) ProcessEpochTransition(ctx context.Context, newEpoch types.Epoch) (*rotation.Result, error) {
	ctx, span := trace.StartSpan(ctx, "engine.ProcessEpochTransition")
	defer span.End()

	if err := s.checkHalted(); err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.transition(ctx, newEpoch)
}

// OnSlot is the clock hook. It runs the epoch transition when the slot crosses an epoch
// boundary and evicts buffered blocks that aged out. Slots behind the last one seen are ignored.
func (s *Service) OnSlot(ctx context.Context, slot types.Slot) (*rotation.Result, error) {
	ctx, span := trace.StartSpan(ctx, "engine.OnSlot")
	defer span.End()

	if err := s.checkHalted(); err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if slot < s.currentSlot {
		return nil, nil
	}
	s.currentSlot = slot
	currentSlotGauge.Set(float64(slot))
	s.forkChoice.SetCurrentSlot(slot)

	var res *rotation.Result
	epoch := s.cfg.chain.SlotToEpoch(slot)
	if epoch < s.set.Epoch() {
		epoch = s.set.Epoch()
	}
	if epoch > s.set.Epoch() || !s.electors.Contains(epoch) {
		r, err := s.transition(ctx, epoch)
		if err != nil {
			return nil, err
		}
		res = r
	}
	if evicted := s.forkChoice.PruneOrphans(ctx); len(evicted) > 0 {
		log.WithField("count", len(evicted)).Debug("Evicted aged buffered blocks")
	}
	return res, nil
}

// transition must be called with the writer lock held. The randomness of the new epoch is
// fetched before anything changes, so a failed fetch leaves the engine at the previous epoch
// and the call can be retried. An epoch the set already reached without an installed elector
// is committed again.
func (s *Service) transition(ctx context.Context, newEpoch types.Epoch) (*rotation.Result, error) {
	prev := s.set.Epoch()
	commit := newEpoch > prev || (newEpoch == prev && !s.electors.Contains(prev))
	var randomness [32]byte
	if commit {
		r, err := s.epochRandomness(ctx, newEpoch)
		if err != nil {
			return nil, err
		}
		randomness = r
	}
	if err := s.applyPendingEvidence(); err != nil {
		return nil, err
	}
	res, snap, err := s.rotation.ProcessEpochTransition(ctx, newEpoch)
	if err != nil {
		if validators.IsConsistencyFault(err) {
			s.halt(err)
			return nil, errors.Wrap(ErrConsensusHalted, err.Error())
		}
		return nil, err
	}
	if newEpoch > prev {
		epochTransitionsCount.Inc()
	}
	s.persistValidators(ctx)
	if committed := s.Snapshot(); newEpoch == prev && committed.Epoch() == prev {
		// Elections stay on the frozen snapshot, not on changes made during the epoch.
		snap = committed
	}
	if commit {
		if err := s.installEpoch(ctx, snap, randomness); err != nil {
			return nil, err
		}
	}
	return res, nil
}
