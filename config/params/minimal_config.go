package params

// MinimalSpecConfig retrieves the minimal config used in tests and local simulations.
func MinimalSpecConfig() *ConsensusConfig {
	minimalConfig := mainnetConsensusConfig.Copy()

	// Time.
	minimalConfig.SlotsPerEpoch = 4

	// Validator set.
	minimalConfig.MinValidatorStake = 10
	minimalConfig.MaxValidators = 64

	// Slashing.
	minimalConfig.JailDurationEpochs = 4
	minimalConfig.EvidenceMaxAgeEpochs = 16
	minimalConfig.EvidenceQueueLimit = 64

	// Fork choice.
	minimalConfig.OrphanPoolPerParentLimit = 4
	minimalConfig.OrphanPoolLimit = 32
	minimalConfig.OrphanMaxAgeSlots = 16
	minimalConfig.OrphanMaxHeightLead = 32
	minimalConfig.FinalityConfirmationDepth = 4

	minimalConfig.ConfigName = ConfigNames[Minimal]
	return minimalConfig
}
