package blocks

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/crypto/hash"
	"github.com/tessera-chain/tessera/encoding/bytesutil"
	"github.com/tessera-chain/tessera/testing/assert"
)

func TestNewHeader_Deterministic(t *testing.T) {
	parent := common.HexToHash("0x01")
	producer := common.HexToAddress("0xaa")
	a := NewHeader(parent, 1, 3, producer, nil)
	b := NewHeader(parent, 1, 3, producer, nil)
	assert.Equal(t, a.Hash, b.Hash)
	assert.Equal(t, parent, a.ParentHash)

	c := NewHeader(parent, 1, 3, producer, []byte("fork"))
	assert.NotEqual(t, a.Hash, c.Hash)
}

func TestComputeHash_CommitsToEveryField(t *testing.T) {
	parent := common.HexToHash("0x01")
	producer := common.HexToAddress("0xaa")
	want := hash.HashConcat(parent[:], bytesutil.Bytes8(7), types.Slot(9).Bytes8(), producer[:], []byte("body"))
	assert.Equal(t, common.Hash(want), ComputeHash(parent, 7, 9, producer, []byte("body")))

	// Height and slot are separate fields even when their values are swapped.
	assert.NotEqual(t, ComputeHash(parent, 7, 9, producer, nil), ComputeHash(parent, 9, 7, producer, nil))
}

func TestHeader_Copy(t *testing.T) {
	h := NewHeader(common.Hash{}, 1, 1, common.HexToAddress("0x01"), nil)
	cp := h.Copy()
	cp.Height = 9
	assert.Equal(t, uint64(1), h.Height)
	var nilHeader *Header
	assert.IsNil(t, nilHeader.Copy())
}
