package util

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/testing/require"
)

// ProposerFunc returns the producer elected for a slot.
type ProposerFunc func(slot types.Slot) (common.Address, error)

// GenesisHeader returns the genesis header used across tests.
func GenesisHeader() *blocks.Header {
	return blocks.NewHeader(common.Hash{}, 0, 0, common.Address{}, []byte("genesis"))
}

// BuildChain extends parent with one header per slot in slots, each produced by the elected
// proposer. The tag is mixed into every hash so callers can build competing branches.
func BuildChain(t testing.TB, proposer ProposerFunc, parent *blocks.Header, slots []types.Slot, tag string) []*blocks.Header {
	headers := make([]*blocks.Header, 0, len(slots))
	prev := parent
	for _, slot := range slots {
		producer, err := proposer(slot)
		require.NoError(t, err)
		h := blocks.NewHeader(prev.Hash, prev.Height+1, slot, producer, []byte(tag))
		headers = append(headers, h)
		prev = h
	}
	return headers
}

// Slots returns the consecutive slots [from, from+n).
func Slots(from types.Slot, n int) []types.Slot {
	res := make([]types.Slot, n)
	for i := range res {
		res[i] = from.Add(uint64(i))
	}
	return res
}
