package hash_test

import (
	"encoding/hex"
	"testing"

	"github.com/tessera-chain/tessera/crypto/hash"
	"github.com/tessera-chain/tessera/testing/assert"
	"github.com/tessera-chain/tessera/testing/require"
)

func TestHash_KnownVector(t *testing.T) {
	// sha256("abc")
	want, err := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	require.NoError(t, err)
	got := hash.Hash([]byte("abc"))
	assert.DeepEqual(t, want, got[:])
}

func TestHashConcat_MatchesHashOfJoined(t *testing.T) {
	assert.Equal(t, hash.Hash([]byte("epochslotseed")), hash.HashConcat([]byte("epoch"), []byte("slot"), []byte("seed")))
	assert.Equal(t, hash.Hash(nil), hash.HashConcat())
}
