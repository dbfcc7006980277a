package kv

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tessera-chain/tessera/consensus/slashing"
	"github.com/tessera-chain/tessera/encoding/bytesutil"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// SlashingRecords returns every saved slashing record in the order it was applied.
func (s *Store) SlashingRecords(ctx context.Context) ([]slashing.Record, error) {
	ctx, span := trace.StartSpan(ctx, "BoltDB.SlashingRecords")
	defer span.End()
	var encs [][]byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(slashingsBucket).ForEach(func(_, v []byte) error {
			encs = append(encs, copyBytes(v))
			return nil
		})
	}); err != nil {
		return nil, err
	}
	records := make([]slashing.Record, 0, len(encs))
	for _, enc := range encs {
		r := &slashingRecord{}
		if err := decode(ctx, enc, r); err != nil {
			return nil, errors.Wrap(err, "could not decode slashing record")
		}
		rec, err := r.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveSlashingRecords appends slashing records. Records are never overwritten.
func (s *Store) SaveSlashingRecords(ctx context.Context, records []slashing.Record) error {
	ctx, span := trace.StartSpan(ctx, "BoltDB.SaveSlashingRecords")
	defer span.End()
	encs := make([][]byte, len(records))
	for i := range records {
		enc, err := encode(ctx, toSlashingRecord(&records[i]))
		if err != nil {
			return err
		}
		encs[i] = enc
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(slashingsBucket)
		for _, enc := range encs {
			seq, err := bkt.NextSequence()
			if err != nil {
				return err
			}
			if err := bkt.Put(bytesutil.Uint64ToBytesBigEndian(seq), enc); err != nil {
				return err
			}
		}
		return nil
	})
}
