package engine

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/slashing"
	"github.com/tessera-chain/tessera/consensus/validators"
	"github.com/tessera-chain/tessera/testing/assert"
	"github.com/tessera-chain/tessera/testing/require"
	"github.com/tessera-chain/tessera/testing/util"
)

func TestService_SubmitEvidence_ForcedExitAndJail(t *testing.T) {
	ctx := context.Background()
	cfg := util.TestConfig()
	cfg.MinValidatorStake = 960
	require.Equal(t, uint64(500), cfg.DoubleSignPenaltyBps)
	s, _ := setupService(t, cfg, nil, 1000, 1000, 1000, 1000)

	offender := util.Address(0)
	ev := &slashing.Evidence{Offender: offender, Kind: slashing.DoubleSign, Epoch: 0, Proof: []byte("two headers")}
	outcome, err := s.SubmitEvidence(ev)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), outcome.Penalty.Uint64())
	assert.Equal(t, uint64(950), outcome.StakeAfter.Uint64())
	assert.Equal(t, true, outcome.ForcedExit)
	assert.Equal(t, true, outcome.Jailed)

	v, ok := s.Validator(offender)
	require.Equal(t, true, ok)
	assert.Equal(t, validators.PendingExit, v.Status.Kind())
	_, err = s.SubmitEvidence(ev)
	require.ErrorIs(t, err, slashing.ErrDuplicateEvidence)
	_, err = s.SubmitEvidence(&slashing.Evidence{Offender: offender, Kind: slashing.DoubleSign, Epoch: 3, Proof: []byte{1}})
	require.ErrorIs(t, err, slashing.ErrFutureEvidence)

	res, err := s.OnSlot(ctx, 4)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{offender}, res.Jailed)
	v, _ = s.Validator(offender)
	assert.Equal(t, validators.Jailed, v.Status.Kind())
	_, ok = s.Snapshot().ActiveStake(offender)
	assert.Equal(t, false, ok)
	assert.Equal(t, 1, len(s.SlashingRecords()))
}

func TestService_QueuedEvidenceAppliedAtTransition(t *testing.T) {
	ctx := context.Background()
	s, _ := setupService(t, util.TestConfig(), nil, 1000, 1000)

	ev := &slashing.Evidence{Offender: util.Address(1), Kind: slashing.Downtime, Proof: []byte("missed")}
	require.NoError(t, s.QueueEvidence(ev))
	require.ErrorIs(t, s.QueueEvidence(ev), slashing.ErrDuplicateEvidence)
	require.ErrorIs(t, s.QueueEvidence(&slashing.Evidence{Offender: util.Address(1)}), slashing.ErrMalformedEvidence)
	assert.Equal(t, 1, s.PendingEvidence())

	_, err := s.ProcessEpochTransition(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, s.PendingEvidence())
	v, ok := s.Validator(util.Address(1))
	require.Equal(t, true, ok)
	assert.Equal(t, uint64(999), v.Stake.Uint64())
	_, err = s.SubmitEvidence(ev)
	require.ErrorIs(t, err, slashing.ErrDuplicateEvidence)
}

func TestService_StartFlushesQueuedEvidence(t *testing.T) {
	cfg := util.TestConfig()
	genesis := util.GenesisHeader()
	s, err := NewService(context.Background(),
		WithChainConfig(cfg),
		WithRandomnessSource(testSeed),
		WithGenesis(genesis, genesisValidators(1000, 1000)),
		WithEvidenceFlushPeriod(10*time.Millisecond),
	)
	require.NoError(t, err)
	s.Start()

	require.NoError(t, s.QueueEvidence(&slashing.Evidence{Offender: util.Address(0), Kind: slashing.Downtime, Proof: []byte{1}}))
	for i := 0; i < 100 && s.PendingEvidence() > 0; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, s.PendingEvidence())
	assert.Equal(t, 1, len(s.SlashingRecords()))

	require.NoError(t, s.QueueEvidence(&slashing.Evidence{Offender: util.Address(1), Kind: slashing.Downtime, Proof: []byte{1}}))
	require.NoError(t, s.Stop())
	assert.Equal(t, 2, len(s.SlashingRecords()))
}

// faultyLedger reports broken stake accounting when one offender is slashed.
type faultyLedger struct {
	*validators.Set
	faulty common.Address
}

func (l *faultyLedger) Slash(addr common.Address, bps uint64) (*validators.PenaltyResult, error) {
	if addr == l.faulty {
		return nil, errors.Wrap(validators.ErrNegativeStake, "total active stake 0")
	}
	return l.Set.Slash(addr, bps)
}

func TestService_QueuedEvidenceFaultHalts(t *testing.T) {
	ctx := context.Background()
	cfg := util.TestConfig()
	s, _ := setupService(t, cfg, nil, 1000, 1000, 1000)
	s.slasher = slashing.New(cfg, &faultyLedger{Set: s.set, faulty: util.Address(1)})

	require.NoError(t, s.QueueEvidence(&slashing.Evidence{Offender: util.Address(0), Kind: slashing.Downtime, Proof: []byte{1}}))
	require.NoError(t, s.QueueEvidence(&slashing.Evidence{Offender: util.Address(1), Kind: slashing.Downtime, Proof: []byte{2}}))

	_, err := s.ProcessEpochTransition(ctx, 1)
	require.ErrorIs(t, err, ErrConsensusHalted)
	require.ErrorIs(t, s.Status(), validators.ErrNegativeStake)
	assert.Equal(t, types.Epoch(0), s.Snapshot().Epoch())
	assert.Equal(t, types.Epoch(0), s.set.Epoch(), "the transition stops at the fault")

	require.ErrorIs(t, s.UpdateStake(util.Address(2), big.NewInt(1)), ErrConsensusHalted)
	require.ErrorIs(t, s.QueueEvidence(&slashing.Evidence{Offender: util.Address(2), Kind: slashing.Downtime, Proof: []byte{3}}), ErrConsensusHalted)
}
