package params

import (
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// UnmarshalConfig parses a yaml chain config on top of the preset it names.
// Configs default to mainnet; a `PRESET_BASE: minimal` line selects the minimal preset.
func UnmarshalConfig(yamlFile []byte) (*ConsensusConfig, error) {
	conf := MainnetConfig()
	hasConfigName := false
	for _, line := range strings.Split(string(yamlFile), "\n") {
		if strings.HasPrefix(line, "CONFIG_NAME") {
			hasConfigName = true
		}
		if strings.HasPrefix(line, "PRESET_BASE") && strings.Contains(line, "minimal") {
			conf = MinimalSpecConfig()
		}
	}
	lines := make([]string, 0)
	for _, line := range strings.Split(string(yamlFile), "\n") {
		if strings.HasPrefix(line, "PRESET_BASE") {
			continue
		}
		lines = append(lines, line)
	}
	if err := yaml.UnmarshalStrict([]byte(strings.Join(lines, "\n")), conf); err != nil {
		return nil, errors.Wrap(err, "failed to parse chain config yaml")
	}
	if !hasConfigName {
		conf.ConfigName = "devnet"
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid chain config")
	}
	return conf, nil
}

// LoadChainConfigFile loads a yaml chain config file and applies it as the active config.
func LoadChainConfigFile(chainConfigFileName string) (*ConsensusConfig, error) {
	yamlFile, err := ioutil.ReadFile(chainConfigFileName) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chain config file")
	}
	conf, err := UnmarshalConfig(yamlFile)
	if err != nil {
		return nil, err
	}
	log.Debugf("Config file values: %+v", conf)
	OverrideConsensusConfig(conf)
	return conf, nil
}
