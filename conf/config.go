package conf

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// NetworkOverride holds per-network parameter overrides read from an
// optional YAML file, for operators running a named testnet whose
// parameters aren't baked into model/chainparams.
type NetworkOverride struct {
	Name               string `yaml:"name"`
	GenesisTimestamp   uint32 `yaml:"genesis_timestamp"`
	GenesisNonce       uint32 `yaml:"genesis_nonce"`
	GenesisBits        uint32 `yaml:"genesis_bits"`
	PowLimitHex        string `yaml:"pow_limit"`
	TargetSpacingSecs  int64  `yaml:"target_spacing_secs"`
	NoRetargeting      bool   `yaml:"no_retargeting"`
	AllowMinDifficulty bool   `yaml:"allow_min_difficulty"`
}

// LoadNetworkOverride reads a YAML network-parameter overlay, if present.
// Returning (nil, nil) when the file does not exist is intentional: the
// overlay is optional and main/test/regtest never need one.
func LoadNetworkOverride(dataDir string) (*NetworkOverride, error) {
	path := filepath.Join(dataDir, "network.yaml")
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	var override NetworkOverride
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("fatal error parsing %s: %v", path, err)
	}
	return &override, nil
}

// LoadViperOverrides reads copernicus.{yaml,json,toml}-style config from
// configFilePath into viper's global registry, used for operational knobs
// (log rotation, cache sizing) that don't belong in the go-flags CLI surface.
func LoadViperOverrides(configFilePath string) error {
	viper.SetConfigName("copernicus")
	viper.AddConfigPath(configFilePath)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("fatal error config file: %s", err)
	}
	return nil
}
