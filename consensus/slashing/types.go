package slashing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// OffenseKind is the type of provable misbehavior an evidence object reports.
type OffenseKind uint8

const (
	// DoubleSign is two conflicting blocks signed for the same slot.
	DoubleSign OffenseKind = iota
	// Downtime is a failure to produce elected blocks.
	Downtime
	// FraudulentScoring is a provably dishonest weight or score report.
	FraudulentScoring
)

func (k OffenseKind) String() string {
	switch k {
	case DoubleSign:
		return "DOUBLE_SIGN"
	case Downtime:
		return "DOWNTIME"
	case FraudulentScoring:
		return "FRAUDULENT_SCORING"
	default:
		return "UNKNOWN"
	}
}

// Severe offenses jail the offender in addition to the stake penalty.
func (k OffenseKind) Severe() bool {
	return k == DoubleSign || k == FraudulentScoring
}

func (k OffenseKind) valid() bool {
	return k <= FraudulentScoring
}

// Evidence of misbehavior, authenticated by the network layer before it reaches the core.
type Evidence struct {
	Offender common.Address
	Kind     OffenseKind
	Epoch    types.Epoch
	Proof    []byte
}

// Copy returns a deep copy of the evidence.
func (e *Evidence) Copy() *Evidence {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Proof = append([]byte{}, e.Proof...)
	return &cp
}

func (e *Evidence) String() string {
	return fmt.Sprintf("%s by %s at epoch %d", e.Kind, e.Offender.Hex(), e.Epoch)
}

// evidenceKey identifies one offense: the same offender, kind and epoch is never punished twice.
type evidenceKey struct {
	offender common.Address
	kind     OffenseKind
	epoch    types.Epoch
}

func (e *Evidence) key() evidenceKey {
	return evidenceKey{offender: e.Offender, kind: e.Kind, epoch: e.Epoch}
}

// PenaltyOutcome is the effect of applied evidence on its offender.
type PenaltyOutcome struct {
	Offender    common.Address
	Kind        OffenseKind
	Epoch       types.Epoch
	PenaltyBps  uint64
	StakeBefore uint256.Int
	Penalty     uint256.Int
	StakeAfter  uint256.Int
	// ForcedExit is set when the offender dropped below the minimum stake and was queued for exit.
	ForcedExit bool
	// Jailed is set when the offense is severe and a jail report was issued.
	Jailed bool
}

// Record pairs applied evidence with its outcome for audit. Records are never mutated.
type Record struct {
	Evidence Evidence
	Outcome  PenaltyOutcome
}

// JailReport asks the rotation scheduler to jail an offender at the next epoch transition.
type JailReport struct {
	Offender common.Address
	Kind     OffenseKind
	Epoch    types.Epoch
}
