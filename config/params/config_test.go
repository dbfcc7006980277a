package params

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/tessera-chain/tessera/testing/assert"
	"github.com/tessera-chain/tessera/testing/require"
)

func TestConfig_PresetsAreValid(t *testing.T) {
	require.NoError(t, MainnetConfig().Validate())
	require.NoError(t, MinimalSpecConfig().Validate())
	assert.Equal(t, "mainnet", MainnetConfig().ConfigName)
	assert.Equal(t, "minimal", MinimalSpecConfig().ConfigName)
}

func TestConfig_CopyIsIndependent(t *testing.T) {
	c := MainnetConfig()
	cp := c.Copy()
	cp.MinValidatorStake = 1
	assert.NotEqual(t, c.MinValidatorStake, cp.MinValidatorStake)
	assert.NotEqual(t, uint64(1), MainnetConfig().MinValidatorStake, "preset mutated through a copy")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ConsensusConfig)
		wantErr string
	}{
		{
			name:    "zero slots per epoch",
			mutate:  func(c *ConsensusConfig) { c.SlotsPerEpoch = 0 },
			wantErr: "slots per epoch",
		},
		{
			name:    "penalty above 100%",
			mutate:  func(c *ConsensusConfig) { c.DoubleSignPenaltyBps = BasisPointsDenominator + 1 },
			wantErr: "penalty fractions",
		},
		{
			name: "finality threshold not a majority",
			mutate: func(c *ConsensusConfig) {
				c.FinalityThresholdNumerator = 1
				c.FinalityThresholdDenominator = 2
			},
			wantErr: "strict majority",
		},
		{
			name: "per parent orphan limit above global",
			mutate: func(c *ConsensusConfig) {
				c.OrphanPoolPerParentLimit = 10
				c.OrphanPoolLimit = 5
			},
			wantErr: "per-parent orphan limit",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := MinimalSpecConfig()
			tt.mutate(c)
			require.ErrorContains(t, tt.wantErr, c.Validate())
		})
	}
}

func TestConfig_SlotEpochConversion(t *testing.T) {
	c := MinimalSpecConfig()
	assert.Equal(t, c.SlotToEpoch(0), c.SlotToEpoch(3))
	assert.Equal(t, uint64(1), uint64(c.SlotToEpoch(4)))
	assert.Equal(t, uint64(8), uint64(c.EpochStartSlot(2)))
}

func TestUnmarshalConfig_MinimalPreset(t *testing.T) {
	yamlFile := []byte("PRESET_BASE: minimal\nMIN_VALIDATOR_STAKE: 960\nDOUBLE_SIGN_PENALTY_BPS: 500\n")
	conf, err := UnmarshalConfig(yamlFile)
	require.NoError(t, err)
	assert.Equal(t, uint64(960), conf.MinValidatorStake)
	assert.Equal(t, MinimalSpecConfig().SlotsPerEpoch, conf.SlotsPerEpoch)
	assert.Equal(t, "devnet", conf.ConfigName)
}

func TestUnmarshalConfig_UnknownFieldRejected(t *testing.T) {
	_, err := UnmarshalConfig([]byte("NOT_A_FIELD: 1\n"))
	require.ErrorContains(t, "failed to parse chain config yaml", err)
}

func TestUnmarshalConfig_InvalidValues(t *testing.T) {
	_, err := UnmarshalConfig([]byte("CONFIG_NAME: broken\nSLOTS_PER_EPOCH: 0\n"))
	require.ErrorContains(t, "invalid chain config", err)
}

func TestLoadChainConfigFile_OverridesActiveConfig(t *testing.T) {
	SetupTestConfigCleanup(t)
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte("CONFIG_NAME: testnet\nMAX_VALIDATORS: 7\n"), 0600))
	conf, err := LoadChainConfigFile(file)
	require.NoError(t, err)
	assert.Equal(t, "testnet", conf.ConfigName)
	assert.Equal(t, uint64(7), ActiveConfig().MaxValidators)
}

func TestByName(t *testing.T) {
	c, ok := ByName("minimal")
	require.Equal(t, true, ok)
	assert.Equal(t, MinimalSpecConfig().SlotsPerEpoch, c.SlotsPerEpoch)
	_, ok = ByName("unknown")
	assert.Equal(t, false, ok)
	assert.Equal(t, "undefined", ConfigName(99).String())
}
