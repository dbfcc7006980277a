// Package params defines the tunable constants of the tessera consensus core.
package params

import (
	"github.com/pkg/errors"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
)

// BasisPointsDenominator is the fixed denominator for commission and penalty fractions.
const BasisPointsDenominator = 10000

// ConsensusConfig contains the constant configs a node needs to take part in consensus.
// Every numeric value here is configuration, not protocol law.
type ConsensusConfig struct {
	ConfigName string `yaml:"CONFIG_NAME"`

	// Time.
	SlotsPerEpoch types.Slot `yaml:"SLOTS_PER_EPOCH"`

	// Validator set.
	MinValidatorStake     uint64      `yaml:"MIN_VALIDATOR_STAKE"`
	MaxValidators         uint64      `yaml:"MAX_VALIDATORS"`
	MaxCommissionBps      uint64      `yaml:"MAX_COMMISSION_BPS"`
	ActivationDelayEpochs types.Epoch `yaml:"ACTIVATION_DELAY_EPOCHS"`
	ExitDelayEpochs       types.Epoch `yaml:"EXIT_DELAY_EPOCHS"`

	// Slashing.
	DoubleSignPenaltyBps        uint64      `yaml:"DOUBLE_SIGN_PENALTY_BPS"`
	DowntimePenaltyBps          uint64      `yaml:"DOWNTIME_PENALTY_BPS"`
	FraudulentScoringPenaltyBps uint64      `yaml:"FRAUDULENT_SCORING_PENALTY_BPS"`
	JailDurationEpochs          types.Epoch `yaml:"JAIL_DURATION_EPOCHS"`
	EvidenceMaxAgeEpochs        types.Epoch `yaml:"EVIDENCE_MAX_AGE_EPOCHS"`
	EvidenceQueueLimit          uint64      `yaml:"EVIDENCE_QUEUE_LIMIT"`

	// Fork choice.
	OrphanPoolPerParentLimit     uint64     `yaml:"ORPHAN_POOL_PER_PARENT_LIMIT"`
	OrphanPoolLimit              uint64     `yaml:"ORPHAN_POOL_LIMIT"`
	OrphanMaxAgeSlots            types.Slot `yaml:"ORPHAN_MAX_AGE_SLOTS"`
	OrphanMaxHeightLead          uint64     `yaml:"ORPHAN_MAX_HEIGHT_LEAD"`
	FinalityConfirmationDepth    uint64     `yaml:"FINALITY_CONFIRMATION_DEPTH"`
	FinalityThresholdNumerator   uint64     `yaml:"FINALITY_THRESHOLD_NUMERATOR"`
	FinalityThresholdDenominator uint64     `yaml:"FINALITY_THRESHOLD_DENOMINATOR"`

	// Caches.
	ProposerCacheSize int `yaml:"PROPOSER_CACHE_SIZE"`
	ElectorCacheSize  int `yaml:"ELECTOR_CACHE_SIZE"`
}

// Validate checks the config for values the consensus core cannot operate with.
func (c *ConsensusConfig) Validate() error {
	switch {
	case c.SlotsPerEpoch == 0:
		return errors.New("slots per epoch must be non-zero")
	case c.MinValidatorStake == 0:
		return errors.New("minimum validator stake must be non-zero")
	case c.MaxValidators == 0:
		return errors.New("max validators must be non-zero")
	case c.MaxCommissionBps > BasisPointsDenominator:
		return errors.Errorf("max commission %d exceeds %d basis points", c.MaxCommissionBps, BasisPointsDenominator)
	case c.DoubleSignPenaltyBps > BasisPointsDenominator,
		c.DowntimePenaltyBps > BasisPointsDenominator,
		c.FraudulentScoringPenaltyBps > BasisPointsDenominator:
		return errors.New("penalty fractions cannot exceed 100%")
	case c.OrphanPoolPerParentLimit == 0 || c.OrphanPoolLimit == 0:
		return errors.New("orphan pool limits must be non-zero")
	case c.OrphanPoolPerParentLimit > c.OrphanPoolLimit:
		return errors.New("per-parent orphan limit exceeds global orphan limit")
	case c.EvidenceQueueLimit == 0:
		return errors.New("evidence queue limit must be non-zero")
	case c.FinalityThresholdDenominator == 0:
		return errors.New("finality threshold denominator must be non-zero")
	case c.FinalityThresholdNumerator*2 <= c.FinalityThresholdDenominator:
		return errors.New("finality threshold must be a strict majority of stake")
	case c.FinalityThresholdNumerator > c.FinalityThresholdDenominator:
		return errors.New("finality threshold cannot exceed total stake")
	case c.ProposerCacheSize <= 0 || c.ElectorCacheSize <= 0:
		return errors.New("cache sizes must be positive")
	}
	return nil
}

// SlotToEpoch returns the epoch the given slot belongs to.
func (c *ConsensusConfig) SlotToEpoch(slot types.Slot) types.Epoch {
	return types.Epoch(slot / c.SlotsPerEpoch)
}

// EpochStartSlot returns the first slot of the given epoch.
func (c *ConsensusConfig) EpochStartSlot(epoch types.Epoch) types.Slot {
	return types.Slot(epoch) * c.SlotsPerEpoch
}
