package kv

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// HasNode checks if a block node is saved.
func (s *Store) HasNode(ctx context.Context, hash common.Hash) bool {
	_, span := trace.StartSpan(ctx, "BoltDB.HasNode")
	defer span.End()
	exists := false
	if err := s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(nodesBucket).Get(hash[:]) != nil
		return nil
	}); err != nil { // This view never returns an error, but we'll handle anyway for sanity.
		panic(err)
	}
	return exists
}

// SaveGenesis saves the root of the block tree.
func (s *Store) SaveGenesis(ctx context.Context, genesis forkchoice.NodeRecord) error {
	ctx, span := trace.StartSpan(ctx, "BoltDB.SaveGenesis")
	defer span.End()
	enc, err := encode(ctx, toNodeRecord(genesis))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(chainMetadataBucket).Put(genesisNodeKey, enc)
	})
}

// SaveNodes saves non-genesis block nodes in a single transaction.
func (s *Store) SaveNodes(ctx context.Context, nodes []forkchoice.NodeRecord) error {
	ctx, span := trace.StartSpan(ctx, "BoltDB.SaveNodes")
	defer span.End()
	encs := make([][]byte, len(nodes))
	for i, n := range nodes {
		enc, err := encode(ctx, toNodeRecord(n))
		if err != nil {
			return err
		}
		encs[i] = enc
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(nodesBucket)
		for i, n := range nodes {
			if err := bkt.Put(n.Hash[:], encs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteNodes removes pruned block nodes.
func (s *Store) DeleteNodes(ctx context.Context, hashes []common.Hash) error {
	_, span := trace.StartSpan(ctx, "BoltDB.DeleteNodes")
	defer span.End()
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(nodesBucket)
		for _, h := range hashes {
			if err := bkt.Delete(h[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

// BlockTree reassembles the saved block tree, or returns nil if no genesis was saved.
func (s *Store) BlockTree(ctx context.Context) (*forkchoice.TreeExport, error) {
	ctx, span := trace.StartSpan(ctx, "BoltDB.BlockTree")
	defer span.End()

	var genesisEnc []byte
	var nodeEncs [][]byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		genesisEnc = copyBytes(tx.Bucket(chainMetadataBucket).Get(genesisNodeKey))
		return tx.Bucket(nodesBucket).ForEach(func(_, v []byte) error {
			nodeEncs = append(nodeEncs, copyBytes(v))
			return nil
		})
	}); err != nil {
		return nil, err
	}
	if genesisEnc == nil {
		return nil, nil
	}
	g := &nodeRecord{}
	if err := decode(ctx, genesisEnc, g); err != nil {
		return nil, errors.Wrap(err, "could not decode genesis node")
	}
	genesis, err := g.toNode()
	if err != nil {
		return nil, err
	}
	exp := &forkchoice.TreeExport{
		Genesis:   genesis,
		Finalized: genesis.Hash,
		Nodes:     make([]forkchoice.NodeRecord, 0, len(nodeEncs)),
	}
	for _, enc := range nodeEncs {
		r := &nodeRecord{}
		if err := decode(ctx, enc, r); err != nil {
			return nil, errors.Wrap(err, "could not decode block node")
		}
		n, err := r.toNode()
		if err != nil {
			return nil, err
		}
		exp.Nodes = append(exp.Nodes, n)
	}
	cp, err := s.FinalizedCheckpoint(ctx)
	if err != nil {
		return nil, err
	}
	if cp != nil {
		exp.Finalized = cp.Hash
	}
	return exp, nil
}
