package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/config/params"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/engine"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
	"github.com/tessera-chain/tessera/consensus/slashing"
	"github.com/tessera-chain/tessera/time/slots"
	"golang.org/x/sync/errgroup"
)

type simOptions struct {
	slots        uint64
	forkEvery    uint64
	doubleSignAt uint64
	// slotDuration paces production in real time when positive.
	slotDuration time.Duration
}

type summary struct {
	accepted    int
	buffered    int
	rejected    int
	forks       int
	transitions int
	evidence    int
	pruned      int64
}

type simulator struct {
	engine *engine.Service
	cfg    *params.ConsensusConfig
	opts   simOptions
	stats  summary
}

func newSimulator(svc *engine.Service, cfg *params.ConsensusConfig, opts simOptions) *simulator {
	return &simulator{engine: svc, cfg: cfg, opts: opts}
}

// run produces blocks while a second goroutine follows the prunable-block stream.
func (s *simulator) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	events := make(chan *forkchoice.PrunedEvent, 16)
	sub := s.engine.SubscribePrunable(events)
	produced := make(chan struct{})

	g.Go(func() error {
		defer sub.Unsubscribe()
		for {
			select {
			case ev := <-events:
				atomic.AddInt64(&s.stats.pruned, int64(len(ev.Pruned)))
				log.WithFields(logrus.Fields{
					"finalized": ev.Finalized.Hash.Hex(),
					"height":    ev.Finalized.Height,
					"pruned":    len(ev.Pruned),
				}).Debug("Blocks became prunable")
			case err := <-sub.Err():
				return err
			case <-produced:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	g.Go(func() error {
		defer close(produced)
		return s.produce(ctx)
	})
	return g.Wait()
}

func (s *simulator) produce(ctx context.Context) error {
	head, err := s.engine.ForkChoice().Node(s.engine.CurrentHead(ctx))
	if err != nil {
		return err
	}
	start, end := head.Slot, head.Slot.Add(s.opts.slots)
	if s.opts.slotDuration > 0 {
		return s.produceOnClock(ctx, start, end)
	}
	for slot := start.Add(1); slot <= end; slot++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.step(ctx, slot); err != nil {
			return errors.Wrapf(err, "slot %d", slot)
		}
	}
	return nil
}

// produceOnClock steps once per wall-clock slot, with the clock's genesis placed so that the
// next tick is the slot after start.
func (s *simulator) produceOnClock(ctx context.Context, start, end types.Slot) error {
	genesis := time.Now().Add(-time.Duration(start) * s.opts.slotDuration)
	ticker := slots.NewSlotTicker(genesis, s.opts.slotDuration)
	defer ticker.Done()
	for {
		select {
		case slot := <-ticker.C():
			if slot <= start {
				continue
			}
			if err := s.step(ctx, slot); err != nil {
				return errors.Wrapf(err, "slot %d", slot)
			}
			if slot >= end {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *simulator) step(ctx context.Context, slot types.Slot) error {
	res, err := s.engine.OnSlot(ctx, slot)
	if err != nil {
		return err
	}
	if res != nil {
		s.stats.transitions++
	}
	producer, err := s.engine.ProposerAt(slot)
	if err != nil {
		return err
	}
	parent, err := s.engine.ForkChoice().Node(s.engine.CurrentHead(ctx))
	if err != nil {
		return err
	}
	header := blocks.NewHeader(parent.Hash, parent.Height+1, slot, producer, body("main", slot))
	if err := s.ingest(ctx, header); err != nil {
		return err
	}

	if s.opts.forkEvery > 0 && uint64(slot)%s.opts.forkEvery == 0 && parent.Height > 0 {
		grandparent, err := s.engine.ForkChoice().Node(parent.ParentHash)
		if err == nil {
			fork := blocks.NewHeader(grandparent.Hash, grandparent.Height+1, slot, producer, body("fork", slot))
			s.stats.forks++
			if err := s.ingest(ctx, fork); err != nil {
				return err
			}
		}
	}

	if s.opts.doubleSignAt > 0 && uint64(slot) == s.opts.doubleSignAt {
		conflicting := blocks.NewHeader(parent.Hash, parent.Height+1, slot, producer, body("double", slot))
		if err := s.ingest(ctx, conflicting); err != nil {
			return err
		}
		ev := &slashing.Evidence{
			Offender: producer,
			Kind:     slashing.DoubleSign,
			Epoch:    s.cfg.SlotToEpoch(slot),
			Proof:    append(header.Hash.Bytes(), conflicting.Hash.Bytes()...),
		}
		if err := s.engine.QueueEvidence(ev); err != nil {
			log.WithError(err).Warn("Could not queue double sign evidence")
		} else {
			s.stats.evidence++
			log.WithField("producer", producer.Hex()).Info("Reported double sign")
		}
	}
	return nil
}

func (s *simulator) ingest(ctx context.Context, header *blocks.Header) error {
	res, err := s.engine.IngestBlock(ctx, header)
	if err != nil {
		return err
	}
	switch res.Status {
	case forkchoice.Accepted:
		s.stats.accepted++
	case forkchoice.Buffered:
		s.stats.buffered++
	case forkchoice.Rejected:
		s.stats.rejected++
		log.WithError(res.Reason).WithField("hash", header.Hash.Hex()).Debug("Block rejected")
	}
	return nil
}

func (s *simulator) report(ctx context.Context) {
	cp := s.engine.FinalizedCheckpoint()
	snap := s.engine.Snapshot()
	log.WithFields(logrus.Fields{
		"head":             s.engine.CurrentHead(ctx).Hex(),
		"finalized":        cp.Hash.Hex(),
		"finalizedHeight":  cp.Height,
		"epoch":            snap.Epoch(),
		"activeValidators": snap.ActiveCount(),
		"accepted":         s.stats.accepted,
		"buffered":         s.stats.buffered,
		"rejected":         s.stats.rejected,
		"forks":            s.stats.forks,
		"transitions":      s.stats.transitions,
		"pruned":           atomic.LoadInt64(&s.stats.pruned),
		"slashings":        len(s.engine.SlashingRecords()),
	}).Info("Simulation complete")
}

func body(tag string, slot types.Slot) []byte {
	return []byte(fmt.Sprintf("%s-%d", tag, slot))
}
