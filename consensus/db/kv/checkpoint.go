package kv

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// FinalizedCheckpoint returns the latest finalized checkpoint, or nil if none was saved.
func (s *Store) FinalizedCheckpoint(ctx context.Context) (*forkchoice.Checkpoint, error) {
	ctx, span := trace.StartSpan(ctx, "BoltDB.FinalizedCheckpoint")
	defer span.End()
	var enc []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		enc = copyBytes(tx.Bucket(checkpointBucket).Get(finalizedCheckpointKey))
		return nil
	}); err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, nil
	}
	rec := &checkpointRecord{}
	if err := decode(ctx, enc, rec); err != nil {
		return nil, err
	}
	return &forkchoice.Checkpoint{Hash: rec.Hash, Height: rec.Height}, nil
}

// SaveFinalizedCheckpoint saves the finalized checkpoint. The checkpoint must not move backwards.
func (s *Store) SaveFinalizedCheckpoint(ctx context.Context, checkpoint *forkchoice.Checkpoint) error {
	ctx, span := trace.StartSpan(ctx, "BoltDB.SaveFinalizedCheckpoint")
	defer span.End()
	if checkpoint == nil {
		return errors.New("nil checkpoint")
	}
	prev, err := s.FinalizedCheckpoint(ctx)
	if err != nil {
		return err
	}
	if prev != nil && prev.Height > checkpoint.Height {
		return errors.Errorf("finalized checkpoint height %d is below saved height %d", checkpoint.Height, prev.Height)
	}
	enc, err := encode(ctx, &checkpointRecord{Hash: checkpoint.Hash, Height: checkpoint.Height})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(checkpointBucket).Put(finalizedCheckpointKey, enc)
	})
}
