package election

import (
	"math/big"
	"testing"

	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/testing/assert"
	"github.com/tessera-chain/tessera/testing/require"
	"github.com/tessera-chain/tessera/testing/util"
)

func TestElector_ValidateBlockProducer(t *testing.T) {
	cfg := util.TestConfig()
	snap := util.NewSnapshot(t, cfg, 40, 30, 20, 10)
	e, err := NewElector(cfg, snap, [32]byte{7})
	require.NoError(t, err)

	slot := types.Slot(2)
	proposer, err := e.ProposerAt(slot)
	require.NoError(t, err)

	good := blocks.NewHeader(util.GenesisHeader().Hash, 1, slot, proposer, nil)
	require.NoError(t, e.ValidateBlockProducer(good))
	assert.Equal(t, true, e.IsValidProducer(good))

	for i := 0; i < 4; i++ {
		if util.Address(i) == proposer {
			continue
		}
		bad := blocks.NewHeader(util.GenesisHeader().Hash, 1, slot, util.Address(i), nil)
		assert.ErrorIs(t, e.ValidateBlockProducer(bad), ErrInvalidProducer)
		assert.Equal(t, false, e.IsValidProducer(bad))
	}
	assert.ErrorIs(t, e.ValidateBlockProducer(nil), blocks.ErrNilHeader)
}

func TestElector_SlotOutsideEpoch(t *testing.T) {
	cfg := util.TestConfig()
	e, err := NewElector(cfg, util.NewSnapshot(t, cfg, 10), [32]byte{})
	require.NoError(t, err)

	_, err = e.ProposerAt(cfg.EpochStartSlot(1))
	assert.ErrorIs(t, err, ErrSlotOutsideEpoch)

	h := blocks.NewHeader(util.GenesisHeader().Hash, 1, cfg.EpochStartSlot(1), util.Address(0), nil)
	assert.ErrorIs(t, e.ValidateBlockProducer(h), ErrInvalidProducer)
}

func TestElector_CachedMatchesPure(t *testing.T) {
	cfg := util.TestConfig()
	snap := util.NewSnapshot(t, cfg, 5, 7, 11)
	e, err := NewElector(cfg, snap, [32]byte{9})
	require.NoError(t, err)
	for round := 0; round < 2; round++ {
		for slot := types.Slot(0); slot < cfg.SlotsPerEpoch; slot++ {
			got, err := e.ProposerAt(slot)
			require.NoError(t, err)
			want, err := ElectProposer(snap, 0, slot, [32]byte{9})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestElector_FrozenAgainstLiveMutations(t *testing.T) {
	cfg := util.TestConfig()
	set := util.NewValidatorSet(t, cfg, 40, 30, 20, 10)
	e, err := NewElector(cfg, set.Snapshot(), [32]byte{})
	require.NoError(t, err)

	before := make([]interface{}, 0)
	for slot := types.Slot(0); slot < cfg.SlotsPerEpoch; slot++ {
		p, err := ElectProposer(e.Snapshot(), 0, slot, [32]byte{})
		require.NoError(t, err)
		before = append(before, p)
	}
	require.NoError(t, set.UpdateStake(util.Address(3), big.NewInt(1000)))
	for slot := types.Slot(0); slot < cfg.SlotsPerEpoch; slot++ {
		p, err := e.ProposerAt(slot)
		require.NoError(t, err)
		assert.Equal(t, before[slot], p)
	}
}

func TestElector_ProducerWeight(t *testing.T) {
	cfg := util.TestConfig()
	e, err := NewElector(cfg, util.NewSnapshot(t, cfg, 40, 30), [32]byte{})
	require.NoError(t, err)

	w, err := e.ProducerWeight(&blocks.Header{Producer: util.Address(1)})
	require.NoError(t, err)
	assert.Equal(t, uint64(30), w.Uint64())

	_, err = e.ProducerWeight(&blocks.Header{Producer: util.Address(5)})
	assert.ErrorIs(t, err, ErrInvalidProducer)
}
