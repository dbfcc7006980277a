package forkchoice

import (
	"context"
	"testing"

	"github.com/tessera-chain/tessera/consensus-types/blocks"
	"github.com/tessera-chain/tessera/testing/assert"
	"github.com/tessera-chain/tessera/testing/require"
	"github.com/tessera-chain/tessera/testing/util"
)

func TestStore_ExportRestore(t *testing.T) {
	ctx := context.Background()
	cfg := util.TestConfig()
	s, genesis := setup(t, cfg, 10, 20, 30)
	a1 := child(genesis, 0, 1, "a")
	a2 := child(a1, 1, 2, "a")
	a3 := child(a2, 2, 3, "a")
	b2 := child(a1, 2, 4, "b")
	c1 := child(genesis, 1, 5, "c")
	for _, h := range []*blocks.Header{a1, a2, a3, b2, c1} {
		ingest(t, s, h, Accepted)
	}
	_, err := s.Finalize(ctx, a1.Hash)
	require.NoError(t, err)

	exp := s.Export()
	assert.Equal(t, genesis.Hash, exp.Genesis.Hash)
	assert.Equal(t, a1.Hash, exp.Finalized)
	require.Equal(t, 4, len(exp.Nodes))
	for i := 1; i < len(exp.Nodes); i++ {
		assert.Equal(t, true, exp.Nodes[i-1].Height <= exp.Nodes[i].Height)
	}

	restored, err := Restore(ctx, cfg, exp, newTestAuthority(10, 20, 30))
	require.NoError(t, err)
	assert.Equal(t, s.Head(ctx), restored.Head(ctx))
	assert.Equal(t, s.NodeCount(), restored.NodeCount())
	assert.DeepEqual(t, s.FinalizedCheckpoint(), restored.FinalizedCheckpoint())
	for _, r := range exp.Nodes {
		assert.Equal(t, subtreeWeight(t, s, r.Hash), subtreeWeight(t, restored, r.Hash))
	}
	assert.Equal(t, subtreeWeight(t, s, genesis.Hash), subtreeWeight(t, restored, genesis.Hash))
	assert.DeepEqual(t, exp, restored.Export())

	// The restored store keeps admitting blocks.
	ingest(t, restored, child(a3, 0, 6, "a"), Accepted)
}

func TestRestore_Errors(t *testing.T) {
	ctx := context.Background()
	cfg := util.TestConfig()
	s, genesis := setup(t, cfg, 10)
	a1 := child(genesis, 0, 1, "a")
	a2 := child(a1, 0, 2, "a")
	ingest(t, s, a1, Accepted)
	ingest(t, s, a2, Accepted)

	_, err := Restore(ctx, cfg, nil, newTestAuthority(10))
	require.ErrorContains(t, "nil tree export", err)

	exp := s.Export()
	exp.Nodes = exp.Nodes[1:]
	_, err = Restore(ctx, cfg, exp, newTestAuthority(10))
	require.ErrorIs(t, err, ErrUnknownParent)

	exp = s.Export()
	exp.Nodes = append(exp.Nodes, exp.Nodes[0])
	_, err = Restore(ctx, cfg, exp, newTestAuthority(10))
	require.ErrorIs(t, err, ErrBlockKnown)

	exp = s.Export()
	exp.Finalized = child(a2, 0, 3, "missing").Hash
	_, err = Restore(ctx, cfg, exp, newTestAuthority(10))
	require.ErrorIs(t, err, ErrNilNode)
}
