package params

import (
	"sync"

	"github.com/mohae/deepcopy"
)

var (
	consensusConfig = MainnetConfig()
	configLock      sync.RWMutex
)

// ActiveConfig retrieves the active consensus config.
func ActiveConfig() *ConsensusConfig {
	configLock.RLock()
	defer configLock.RUnlock()
	return consensusConfig
}

// OverrideConsensusConfig by replacing the config. The preferred pattern is to
// call ActiveConfig(), copy and change the specific parameters, and then call
// OverrideConsensusConfig(c). Any subsequent calls to params.ActiveConfig() will
// return this new configuration.
func OverrideConsensusConfig(c *ConsensusConfig) {
	configLock.Lock()
	defer configLock.Unlock()
	consensusConfig = c
}

// SetupTestConfigCleanup preserves the active config and restores it when the test completes.
func SetupTestConfigCleanup(t interface{ Cleanup(func()) }) {
	prev := ActiveConfig().Copy()
	t.Cleanup(func() {
		OverrideConsensusConfig(prev)
	})
}

// Copy returns a copy of the config object.
func (c *ConsensusConfig) Copy() *ConsensusConfig {
	config := deepcopy.Copy(*c).(ConsensusConfig)
	return &config
}
