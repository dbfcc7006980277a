package params

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *ConsensusConfig {
	return mainnetConsensusConfig.Copy()
}

var mainnetConsensusConfig = &ConsensusConfig{
	ConfigName: ConfigNames[Mainnet],

	// Time.
	SlotsPerEpoch: 32,

	// Validator set.
	MinValidatorStake:     32_000,
	MaxValidators:         1024,
	MaxCommissionBps:      5000,
	ActivationDelayEpochs: 2,
	ExitDelayEpochs:       2,

	// Slashing.
	DoubleSignPenaltyBps:        500,
	DowntimePenaltyBps:          10,
	FraudulentScoringPenaltyBps: 1000,
	JailDurationEpochs:          36,
	EvidenceMaxAgeEpochs:        256,
	EvidenceQueueLimit:          1024,

	// Fork choice.
	OrphanPoolPerParentLimit:     16,
	OrphanPoolLimit:              1024,
	OrphanMaxAgeSlots:            64,
	OrphanMaxHeightLead:          128,
	FinalityConfirmationDepth:    32,
	FinalityThresholdNumerator:   2,
	FinalityThresholdDenominator: 3,

	// Caches.
	ProposerCacheSize: 256,
	ElectorCacheSize:  4,
}
