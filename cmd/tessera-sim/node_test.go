package main

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
	"github.com/tessera-chain/tessera/testing/assert"
	"github.com/tessera-chain/tessera/testing/require"
)

func TestOpenDB_Clear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cp := &forkchoice.Checkpoint{Hash: common.HexToHash("0x0a"), Height: 3}

	store, err := openDB(ctx, dir, false)
	require.NoError(t, err)
	require.NoError(t, store.SaveFinalizedCheckpoint(ctx, cp))
	require.NoError(t, store.Close())

	store, err = openDB(ctx, dir, false)
	require.NoError(t, err)
	got, err := store.FinalizedCheckpoint(ctx)
	require.NoError(t, err)
	assert.DeepEqual(t, cp, got)
	require.NoError(t, store.Close())

	store, err = openDB(ctx, dir, true)
	require.NoError(t, err)
	got, err = store.FinalizedCheckpoint(ctx)
	require.NoError(t, err)
	assert.IsNil(t, got)
	require.NoError(t, store.Close())
}
