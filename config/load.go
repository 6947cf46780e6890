package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads, decodes and validates the configuration file at path.
// The file format is derived from the extension (TOML, YAML or JSON).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error in configuration: %w", err)
	}

	return &cfg, nil
}
