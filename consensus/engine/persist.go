package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
	"go.opencensus.io/trace"
)

// Storage failures are logged and counted but never fail the call that triggered them: the
// in-memory state stays authoritative. Failed block tree writes are kept and retried with the
// next block write, parents ahead of their children.

// persistTree must be called with the writer lock held.
func (s *Service) persistTree(ctx context.Context, res *forkchoice.IngestResult) {
	if s.cfg.db == nil || res == nil {
		return
	}
	ctx, span := trace.StartSpan(ctx, "engine.persistTree")
	defer span.End()

	inserted := append(s.unsavedNodes, res.Inserted...)
	s.unsavedNodes = nil
	records := make([]forkchoice.NodeRecord, 0, len(inserted))
	saved := make([]common.Hash, 0, len(inserted))
	for _, h := range inserted {
		info, err := s.forkChoice.Node(h)
		if err != nil {
			// Pruned since it was inserted.
			continue
		}
		records = append(records, info.Record())
		saved = append(saved, h)
	}
	if len(records) > 0 {
		if err := s.cfg.db.SaveNodes(ctx, records); err != nil {
			s.persistFailed(err, "Could not save block nodes")
			s.unsavedNodes = saved
		}
	}

	pruned := append(s.unsavedPrunes, res.Pruned...)
	s.unsavedPrunes = nil
	if len(pruned) > 0 {
		if err := s.cfg.db.DeleteNodes(ctx, pruned); err != nil {
			s.persistFailed(err, "Could not delete pruned block nodes")
			s.unsavedPrunes = pruned
		}
	}

	if len(res.Finalized) > 0 || s.unsavedFinality {
		s.unsavedFinality = false
		if err := s.cfg.db.SaveFinalizedCheckpoint(ctx, s.forkChoice.FinalizedCheckpoint()); err != nil {
			s.persistFailed(err, "Could not save finalized checkpoint")
			s.unsavedFinality = true
		}
	}
}

// persistValidators saves the live validator set and any audit records not yet written.
// It must be called with the writer lock held.
func (s *Service) persistValidators(ctx context.Context) {
	if s.cfg.db == nil {
		return
	}
	ctx, span := trace.StartSpan(ctx, "engine.persistValidators")
	defer span.End()

	if err := s.cfg.db.SaveValidatorSet(ctx, s.set.Snapshot()); err != nil {
		s.persistFailed(err, "Could not save validator set")
	}
	records := s.slasher.Records()
	if len(records) > s.savedRecords {
		if err := s.cfg.db.SaveSlashingRecords(ctx, records[s.savedRecords:]); err != nil {
			s.persistFailed(err, "Could not save slashing records")
			return
		}
		s.savedRecords = len(records)
	}
}

func (s *Service) persistFailed(err error, msg string) {
	persistFailuresCount.Inc()
	log.WithError(err).Error(msg)
}

