package kv

import (
	"context"

	"github.com/pkg/errors"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/validators"
	"github.com/tessera-chain/tessera/encoding/bytesutil"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// ValidatorSet returns the latest saved state of the live validator set, or nil if none was saved.
func (s *Store) ValidatorSet(ctx context.Context) (*validators.Snapshot, error) {
	ctx, span := trace.StartSpan(ctx, "BoltDB.ValidatorSet")
	defer span.End()
	var enc []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		enc = copyBytes(tx.Bucket(validatorSetBucket).Get(validatorSetKey))
		return nil
	}); err != nil {
		return nil, err
	}
	return decodeSnapshot(ctx, enc)
}

// SaveValidatorSet overwrites the saved state of the live validator set.
func (s *Store) SaveValidatorSet(ctx context.Context, snap *validators.Snapshot) error {
	ctx, span := trace.StartSpan(ctx, "BoltDB.SaveValidatorSet")
	defer span.End()
	if snap == nil {
		return errors.New("nil validator snapshot")
	}
	enc, err := encode(ctx, toSnapshotRecord(snap))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(validatorSetBucket).Put(validatorSetKey, enc)
	})
}

// EpochSnapshot returns the frozen snapshot elections of the given epoch ran against,
// or nil if none was saved.
func (s *Store) EpochSnapshot(ctx context.Context, epoch types.Epoch) (*validators.Snapshot, error) {
	ctx, span := trace.StartSpan(ctx, "BoltDB.EpochSnapshot")
	defer span.End()
	var enc []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		enc = copyBytes(tx.Bucket(epochSnapshotsBucket).Get(epochKey(epoch)))
		return nil
	}); err != nil {
		return nil, err
	}
	return decodeSnapshot(ctx, enc)
}

// SaveEpochSnapshot saves the frozen snapshot of an epoch.
func (s *Store) SaveEpochSnapshot(ctx context.Context, snap *validators.Snapshot) error {
	ctx, span := trace.StartSpan(ctx, "BoltDB.SaveEpochSnapshot")
	defer span.End()
	if snap == nil {
		return errors.New("nil validator snapshot")
	}
	enc, err := encode(ctx, toSnapshotRecord(snap))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(epochSnapshotsBucket).Put(epochKey(snap.Epoch()), enc)
	})
}

func decodeSnapshot(ctx context.Context, enc []byte) (*validators.Snapshot, error) {
	if enc == nil {
		return nil, nil
	}
	rec := &snapshotRecord{}
	if err := decode(ctx, enc, rec); err != nil {
		return nil, err
	}
	return rec.toSnapshot()
}

func epochKey(epoch types.Epoch) []byte {
	return bytesutil.Uint64ToBytesBigEndian(uint64(epoch))
}

// copyBytes copies a value out of a bolt transaction, where it is only valid until the
// transaction ends.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
