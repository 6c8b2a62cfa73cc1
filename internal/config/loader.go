package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, expanding ${VAR} environment references
// before unmarshaling, and returns it with no defaults applied.
func Load(path string) (*TradeConfig, error) {
	var cfg TradeConfig
	if err := decode(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWithDefaults is Load plus applyDefaults, for callers that validate
// separately or not at all.
func LoadWithDefaults(path string) (*TradeConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate reads path, fills in defaults, and validates the result
// before returning it — the entry point every cmd/ program should use.
func LoadAndValidate(path string) (*TradeConfig, error) {
	var cfg TradeConfig
	if err := decode(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// decode reads path and env-expands it into cfg.
func decode(path string, cfg *TradeConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}
