package rotation

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tessera-chain/tessera/config/params"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/slashing"
	"github.com/tessera-chain/tessera/consensus/validators"
	"github.com/tessera-chain/tessera/testing/assert"
	"github.com/tessera-chain/tessera/testing/require"
	"github.com/tessera-chain/tessera/testing/util"
)

func testConfig() *params.ConsensusConfig {
	cfg := util.TestConfig()
	cfg.MinValidatorStake = 10
	cfg.ActivationDelayEpochs = 2
	cfg.ExitDelayEpochs = 2
	cfg.JailDurationEpochs = 3
	cfg.MaxValidators = 16
	return cfg
}

func statusOf(t *testing.T, set *validators.Set, addr common.Address) validators.Status {
	v, ok := set.Get(addr)
	require.Equal(t, true, ok)
	return v.Status
}

func TestProcessEpochTransition_ActivationDelay(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	set := validators.NewSet(cfg, 5)
	s := New(cfg, set, nil)

	newcomer := util.Address(0)
	require.NoError(t, set.AddValidator(newcomer, uint256.NewInt(100), 0))
	assert.Equal(t, validators.PendingActivationStatus(7), statusOf(t, set, newcomer))

	res, snap, err := s.ProcessEpochTransition(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, true, res.Empty())
	assert.Equal(t, validators.PendingActivationStatus(7), statusOf(t, set, newcomer))
	assert.Equal(t, types.Epoch(6), snap.Epoch())

	res, snap, err = s.ProcessEpochTransition(ctx, 7)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{newcomer}, res.Activated)
	assert.Equal(t, validators.ActiveStatus(), statusOf(t, set, newcomer))
	assert.Equal(t, uint64(100), snap.TotalActiveStake().Uint64())
	assert.Equal(t, 1, snap.ActiveCount())
}

func TestProcessEpochTransition_Idempotent(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	set := util.NewValidatorSet(t, cfg, 50, 50)
	s := New(cfg, set, nil)

	require.NoError(t, set.AddValidator(util.Address(5), uint256.NewInt(20), 0))
	_, err := set.RequestExit(util.Address(0))
	require.NoError(t, err)

	first, _, err := s.ProcessEpochTransition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, len(first.Activated))
	assert.Equal(t, 1, len(first.Exited))
	stakeAfterFirst := set.TotalActiveStake()

	second, snap, err := s.ProcessEpochTransition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, len(second.Activated))
	assert.Equal(t, 0, len(second.Exited))
	assert.Equal(t, 0, len(second.Jailed))
	assert.Equal(t, true, stakeAfterFirst.Eq(snap.TotalActiveStake()))
}

func TestProcessEpochTransition_StaleEpoch(t *testing.T) {
	cfg := testConfig()
	set := validators.NewSet(cfg, 4)
	s := New(cfg, set, nil)
	_, _, err := s.ProcessEpochTransition(context.Background(), 3)
	assert.ErrorIs(t, err, validators.ErrStaleEpoch)
}

func TestProcessEpochTransition_MaxValidatorsFIFO(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.MaxValidators = 2
	set := util.NewValidatorSet(t, cfg, 100)
	s := New(cfg, set, nil)

	for i := 1; i <= 3; i++ {
		require.NoError(t, set.AddValidator(util.Address(i), uint256.NewInt(100), 0))
	}
	res, _, err := s.ProcessEpochTransition(ctx, 2)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(1)}, res.Activated)
	queued := set.Snapshot().PendingActivations()
	require.Equal(t, 2, len(queued))
	assert.Equal(t, util.Address(2), queued[0].Address)
	assert.Equal(t, util.Address(3), queued[1].Address)

	_, err = set.RequestExit(util.Address(0))
	require.NoError(t, err)
	res, _, err = s.ProcessEpochTransition(ctx, 3)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(2)}, res.Activated, "first requested is first activated")
	assert.Equal(t, validators.PendingActivationStatus(2), statusOf(t, set, util.Address(3)))

	res, _, err = s.ProcessEpochTransition(ctx, 4)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(0)}, res.Exited)
	assert.Equal(t, 0, len(res.Activated), "cap still reached")
	assert.Equal(t, 1, len(set.Snapshot().PendingActivations()))
}

func TestProcessEpochTransition_ActivationRechecksStake(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	set := validators.NewSet(cfg, 0)
	s := New(cfg, set, nil)

	require.NoError(t, set.AddValidator(util.Address(0), uint256.NewInt(12), 0))
	_, err := set.Slash(util.Address(0), 5000)
	require.NoError(t, err)

	res, _, err := s.ProcessEpochTransition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, len(res.Activated))
	assert.DeepEqual(t, []common.Address{util.Address(0)}, res.Exited)
	assert.Equal(t, validators.ExitedStatus(), statusOf(t, set, util.Address(0)))
}

func TestProcessEpochTransition_SlashedBelowMinimumExits(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.MinValidatorStake = 960
	set := util.NewValidatorSet(t, cfg, 1000, 2000)
	s := New(cfg, set, nil)

	res, err := set.Slash(util.Address(0), 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(950), res.StakeAfter.Uint64())
	assert.Equal(t, validators.PendingExit, statusOf(t, set, util.Address(0)).Kind())

	result, snap, err := s.ProcessEpochTransition(ctx, 1)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(0)}, result.Exited)
	_, active := snap.ActiveStake(util.Address(0))
	assert.Equal(t, false, active)
}

func TestProcessEpochTransition_JailingFromSlashing(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.DoubleSignPenaltyBps = 500
	set := util.NewValidatorSet(t, cfg, 1000, 1000)
	m := slashing.New(cfg, set)
	s := New(cfg, set, m)

	_, err := m.SubmitEvidence(&slashing.Evidence{Offender: util.Address(1), Kind: slashing.DoubleSign, Proof: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, validators.ActiveStatus(), statusOf(t, set, util.Address(1)), "jailing waits for the transition")

	res, snap, err := s.ProcessEpochTransition(ctx, 1)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(1)}, res.Jailed)
	assert.Equal(t, validators.JailedStatus(4), statusOf(t, set, util.Address(1)))
	assert.Equal(t, uint64(1000), snap.TotalActiveStake().Uint64())

	res, _, err = s.ProcessEpochTransition(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, true, res.Empty())

	res, snap, err = s.ProcessEpochTransition(ctx, 4)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(1)}, res.Activated)
	assert.Equal(t, uint64(1950), snap.TotalActiveStake().Uint64())
}

func TestProcessEpochTransition_JailedBelowMinimumExitsOnRelease(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.MinValidatorStake = 960
	cfg.DoubleSignPenaltyBps = 500
	set := util.NewValidatorSet(t, cfg, 1000, 2000)
	m := slashing.New(cfg, set)
	s := New(cfg, set, m)

	outcome, err := m.SubmitEvidence(&slashing.Evidence{Offender: util.Address(0), Kind: slashing.DoubleSign, Proof: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, true, outcome.ForcedExit)

	res, _, err := s.ProcessEpochTransition(ctx, 1)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(0)}, res.Jailed)
	assert.Equal(t, 0, len(res.Exited), "jailing supersedes the queued exit")

	res, _, err = s.ProcessEpochTransition(ctx, 4)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(0)}, res.Exited)
	assert.Equal(t, validators.ExitedStatus(), statusOf(t, set, util.Address(0)))
}

func TestProcessEpochTransition_ReleaseWaitsForCapacity(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.MaxValidators = 2
	cfg.DoubleSignPenaltyBps = 0
	set := util.NewValidatorSet(t, cfg, 100, 100)
	m := slashing.New(cfg, set)
	s := New(cfg, set, m)

	_, err := m.SubmitEvidence(&slashing.Evidence{Offender: util.Address(0), Kind: slashing.DoubleSign, Proof: []byte{1}})
	require.NoError(t, err)
	res, _, err := s.ProcessEpochTransition(ctx, 1)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(0)}, res.Jailed)

	newcomer := util.Address(2)
	require.NoError(t, set.AddValidator(newcomer, uint256.NewInt(100), 0))
	res, _, err = s.ProcessEpochTransition(ctx, 3)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{newcomer}, res.Activated)

	// The jail term ended at epoch 4 but both active slots are taken.
	res, snap, err := s.ProcessEpochTransition(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, true, res.Empty())
	assert.Equal(t, validators.JailedStatus(4), statusOf(t, set, util.Address(0)))
	assert.Equal(t, 2, snap.ActiveCount())

	_, err = set.RequestExit(newcomer)
	require.NoError(t, err)
	res, snap, err = s.ProcessEpochTransition(ctx, 5)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(0)}, res.Activated)
	assert.Equal(t, validators.ActiveStatus(), statusOf(t, set, util.Address(0)))
	assert.Equal(t, 2, snap.ActiveCount())
}

func TestProcessEpochTransition_VoluntaryExit(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	set := util.NewValidatorSet(t, cfg, 30, 30)
	s := New(cfg, set, nil)

	exitEpoch, err := set.RequestExit(util.Address(1))
	require.NoError(t, err)
	assert.Equal(t, types.Epoch(2), exitEpoch)

	res, _, err := s.ProcessEpochTransition(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, true, res.Empty())
	assert.Equal(t, validators.PendingExitStatus(2), statusOf(t, set, util.Address(1)))

	res, _, err = s.ProcessEpochTransition(ctx, 2)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(1)}, res.Exited)
	assert.Equal(t, 2, set.Len(), "exited validators remain as tombstones")
}

func TestProcessEpochTransition_SkippedEpochs(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	set := util.NewValidatorSet(t, cfg, 30)
	s := New(cfg, set, nil)
	require.NoError(t, set.AddValidator(util.Address(1), uint256.NewInt(30), 0))
	_, err := set.RequestExit(util.Address(0))
	require.NoError(t, err)

	res, snap, err := s.ProcessEpochTransition(ctx, 10)
	require.NoError(t, err)
	assert.DeepEqual(t, []common.Address{util.Address(1)}, res.Activated)
	assert.DeepEqual(t, []common.Address{util.Address(0)}, res.Exited)
	assert.Equal(t, types.Epoch(10), snap.Epoch())
}
