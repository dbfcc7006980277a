package primitives

import (
	"math"
	"testing"

	"github.com/tessera-chain/tessera/testing/assert"
)

func TestSlot_AddSaturates(t *testing.T) {
	assert.Equal(t, Slot(10), Slot(4).Add(6))
	assert.Equal(t, Slot(math.MaxUint64), Slot(math.MaxUint64-1).Add(5))
}

func TestSlot_SubSlot(t *testing.T) {
	assert.Equal(t, Slot(3), Slot(10).SubSlot(7))
	assert.Equal(t, Slot(0), Slot(7).SubSlot(10))
}

func TestEpoch_AddSaturates(t *testing.T) {
	assert.Equal(t, Epoch(7), Epoch(5).Add(2))
	assert.Equal(t, Epoch(math.MaxUint64), Epoch(math.MaxUint64).Add(1))
}

func TestEpoch_Bytes8(t *testing.T) {
	assert.DeepEqual(t, []byte{1, 1, 0, 0, 0, 0, 0, 0}, Epoch(257).Bytes8())
	assert.DeepEqual(t, []byte{2, 0, 0, 0, 0, 0, 0, 0}, Slot(2).Bytes8())
	assert.Equal(t, "257", Epoch(257).String())
}
