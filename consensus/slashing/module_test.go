package slashing

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	logTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/tessera-chain/tessera/config/params"
	"github.com/tessera-chain/tessera/consensus/validators"
	"github.com/tessera-chain/tessera/testing/assert"
	"github.com/tessera-chain/tessera/testing/require"
	"github.com/tessera-chain/tessera/testing/util"
)

func setup(t *testing.T, minStake uint64, stakes ...uint64) (*params.ConsensusConfig, *validators.Set, *Module) {
	cfg := util.TestConfig()
	cfg.MinValidatorStake = minStake
	cfg.DoubleSignPenaltyBps = 500
	cfg.DowntimePenaltyBps = 10
	cfg.FraudulentScoringPenaltyBps = 1000
	cfg.EvidenceMaxAgeEpochs = 4
	cfg.EvidenceQueueLimit = 2
	set := util.NewValidatorSet(t, cfg, stakes...)
	return cfg, set, New(cfg, set)
}

func doubleSign(i int) *Evidence {
	return &Evidence{Offender: util.Address(i), Kind: DoubleSign, Epoch: 0, Proof: []byte("conflicting headers")}
}

func TestSubmitEvidence_DoubleSignBelowMinimum(t *testing.T) {
	_, set, m := setup(t, 960, 1000, 2000)

	outcome, err := m.SubmitEvidence(doubleSign(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(950), outcome.StakeAfter.Uint64())
	assert.Equal(t, uint64(50), outcome.Penalty.Uint64())
	assert.Equal(t, uint64(500), outcome.PenaltyBps)
	assert.Equal(t, true, outcome.ForcedExit)
	assert.Equal(t, true, outcome.Jailed)

	v, ok := set.Get(util.Address(0))
	require.Equal(t, true, ok)
	assert.Equal(t, validators.PendingExit, v.Status.Kind())
	assert.Equal(t, uint64(2000), set.TotalActiveStake().Uint64())

	reports := m.DrainJailings()
	require.Equal(t, 1, len(reports))
	assert.Equal(t, util.Address(0), reports[0].Offender)
	assert.Equal(t, 0, len(m.DrainJailings()), "jail reports are drained once")
}

func TestSubmitEvidence_DowntimeDoesNotJail(t *testing.T) {
	_, set, m := setup(t, 10, 10000)

	outcome, err := m.SubmitEvidence(&Evidence{Offender: util.Address(0), Kind: Downtime, Proof: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, uint64(9990), outcome.StakeAfter.Uint64())
	assert.Equal(t, false, outcome.Jailed)
	assert.Equal(t, false, outcome.ForcedExit)
	assert.Equal(t, 0, len(m.DrainJailings()))
	assert.Equal(t, uint64(9990), set.TotalActiveStake().Uint64())
}

func TestSubmitEvidence_NeverBelowZero(t *testing.T) {
	cfg, set, m := setup(t, 1, 7)
	cfg.FraudulentScoringPenaltyBps = params.BasisPointsDenominator

	outcome, err := m.SubmitEvidence(&Evidence{Offender: util.Address(0), Kind: FraudulentScoring, Proof: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, true, outcome.StakeAfter.IsZero())
	assert.Equal(t, uint64(7), outcome.Penalty.Uint64())
	assert.Equal(t, true, set.TotalActiveStake().IsZero())
	require.NoError(t, set.VerifyIntegrity())
}

func TestSubmitEvidence_Rejections(t *testing.T) {
	_, set, m := setup(t, 10, 100, 100)
	require.NoError(t, set.AdvanceEpoch(10))

	tests := []struct {
		name    string
		ev      *Evidence
		wantErr error
	}{
		{
			name:    "nil evidence",
			ev:      nil,
			wantErr: ErrMalformedEvidence,
		},
		{
			name:    "empty proof",
			ev:      &Evidence{Offender: util.Address(0), Kind: DoubleSign, Epoch: 10},
			wantErr: ErrMalformedEvidence,
		},
		{
			name:    "unknown kind",
			ev:      &Evidence{Offender: util.Address(0), Kind: OffenseKind(9), Epoch: 10, Proof: []byte{1}},
			wantErr: ErrMalformedEvidence,
		},
		{
			name:    "future epoch",
			ev:      &Evidence{Offender: util.Address(0), Kind: DoubleSign, Epoch: 11, Proof: []byte{1}},
			wantErr: ErrFutureEvidence,
		},
		{
			name:    "stale epoch",
			ev:      &Evidence{Offender: util.Address(0), Kind: DoubleSign, Epoch: 5, Proof: []byte{1}},
			wantErr: ErrStaleEvidence,
		},
		{
			name:    "unknown validator",
			ev:      &Evidence{Offender: util.Address(7), Kind: DoubleSign, Epoch: 10, Proof: []byte{1}},
			wantErr: validators.ErrValidatorNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.SubmitEvidence(tt.ev)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, len(m.Records()))
	assert.Equal(t, uint64(200), set.TotalActiveStake().Uint64())

	// Oldest evidence still inside the window is accepted.
	_, err := m.SubmitEvidence(&Evidence{Offender: util.Address(1), Kind: Downtime, Epoch: 6, Proof: []byte{1}})
	require.NoError(t, err)
}

func TestSubmitEvidence_Duplicate(t *testing.T) {
	_, set, m := setup(t, 10, 1000)

	_, err := m.SubmitEvidence(doubleSign(0))
	require.NoError(t, err)
	afterFirst := set.TotalActiveStake()

	dup := doubleSign(0)
	dup.Proof = []byte("a different proof of the same offense")
	_, err = m.SubmitEvidence(dup)
	assert.ErrorIs(t, err, ErrDuplicateEvidence)
	assert.Equal(t, true, afterFirst.Eq(set.TotalActiveStake()), "duplicate must not be applied")

	other := doubleSign(0)
	other.Kind = Downtime
	_, err = m.SubmitEvidence(other)
	require.NoError(t, err, "another offense kind is a distinct offense")
}

func TestEvidence_ImmutableOnceRecorded(t *testing.T) {
	_, _, m := setup(t, 10, 1000)
	ev := doubleSign(0)
	_, err := m.SubmitEvidence(ev)
	require.NoError(t, err)

	ev.Proof[0] = 'X'
	records := m.Records()
	require.Equal(t, 1, len(records))
	assert.Equal(t, byte('c'), records[0].Evidence.Proof[0])

	records[0].Evidence.Proof[0] = 'Y'
	assert.Equal(t, byte('c'), m.Records()[0].Evidence.Proof[0])
}

func TestQueueEvidence(t *testing.T) {
	hook := logTest.NewGlobal()
	_, set, m := setup(t, 10, 1000, 1000, 1000)

	require.NoError(t, m.QueueEvidence(doubleSign(0)))
	assert.ErrorIs(t, m.QueueEvidence(doubleSign(0)), ErrDuplicateEvidence)
	require.NoError(t, m.QueueEvidence(doubleSign(1)))
	assert.ErrorIs(t, m.QueueEvidence(doubleSign(2)), ErrEvidenceQueueFull)
	require.LogsContain(t, hook, "Evidence queue full")
	assert.Equal(t, 2, m.PendingCount())

	_, err := m.SubmitEvidence(doubleSign(1))
	assert.ErrorIs(t, err, ErrDuplicateEvidence, "queued evidence counts as seen")

	outcomes, err := m.ApplyPending()
	require.NoError(t, err)
	require.Equal(t, 2, len(outcomes))
	assert.Equal(t, 0, m.PendingCount())
	assert.Equal(t, 2, len(m.Records()))
	assert.Equal(t, 2, len(m.DrainJailings()))
	assert.Equal(t, uint64(2900), set.TotalActiveStake().Uint64())

	assert.ErrorIs(t, m.QueueEvidence(doubleSign(0)), ErrDuplicateEvidence, "applied evidence counts as seen")
	require.NoError(t, m.QueueEvidence(doubleSign(2)))
}

func TestApplyPending_DropsInvalidated(t *testing.T) {
	_, set, m := setup(t, 10, 1000)
	require.NoError(t, m.QueueEvidence(&Evidence{Offender: util.Address(4), Kind: Downtime, Proof: []byte{1}}))
	outcomes, err := m.ApplyPending()
	require.NoError(t, err)
	assert.Equal(t, 0, len(outcomes))
	assert.Equal(t, 0, m.PendingCount())
	assert.Equal(t, uint64(1000), set.TotalActiveStake().Uint64())
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

func TestApplyPending_StopsOnConsistencyFault(t *testing.T) {
	cfg, set, _ := setup(t, 10, 1000, 1000, 1000)
	cfg.EvidenceQueueLimit = 3
	m := New(cfg, &faultyLedger{Set: set, faulty: util.Address(1)})
	require.NoError(t, m.QueueEvidence(doubleSign(0)))
	require.NoError(t, m.QueueEvidence(doubleSign(1)))
	require.NoError(t, m.QueueEvidence(doubleSign(2)))

	outcomes, err := m.ApplyPending()
	require.ErrorIs(t, err, validators.ErrNegativeStake)
	assert.Equal(t, true, validators.IsConsistencyFault(err))
	require.Equal(t, 1, len(outcomes))
	assert.Equal(t, util.Address(0), outcomes[0].Offender)
	assert.Equal(t, 1, m.PendingCount(), "evidence after the fault stays queued")
	assert.Equal(t, 1, len(m.Records()))
	assert.Equal(t, uint64(2950), set.TotalActiveStake().Uint64())
}

func TestRestoreRecords(t *testing.T) {
	_, _, m := setup(t, 10, 1000)
	_, err := m.SubmitEvidence(doubleSign(0))
	require.NoError(t, err)

	_, set2, m2 := setup(t, 10, 1000)
	m2.RestoreRecords(m.Records())
	_, err = m2.SubmitEvidence(doubleSign(0))
	assert.ErrorIs(t, err, ErrDuplicateEvidence)
	assert.Equal(t, uint64(1000), set2.TotalActiveStake().Uint64())
	assert.DeepEqual(t, m.Records(), m2.Records())
}

func TestPenaltyBps(t *testing.T) {
	_, _, m := setup(t, 10, 10)
	assert.Equal(t, uint64(500), m.PenaltyBps(DoubleSign))
	assert.Equal(t, uint64(10), m.PenaltyBps(Downtime))
	assert.Equal(t, uint64(1000), m.PenaltyBps(FraudulentScoring))
	assert.Equal(t, uint64(0), m.PenaltyBps(OffenseKind(42)))
	assert.Equal(t, true, DoubleSign.Severe())
	assert.Equal(t, false, Downtime.Severe())
	assert.Equal(t, "FRAUDULENT_SCORING", FraudulentScoring.String())
}
