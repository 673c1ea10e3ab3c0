package config

import (
	"fmt"
	"os"

	"github.com/pbip-bench/runner/types"
	"gopkg.in/yaml.v3"
)

// LoadFromFile loads a harness configuration from a YAML file, applies
// per-scenario defaults and validates the result.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills optional fields so sparse configs stay valid.
func applyDefaults(cfg *Config) {
	if cfg.History.Path == "" {
		cfg.History.Path = "results/history.db"
	}
	for _, sc := range cfg.Scenarios {
		if sc.ReportVariant == "" {
			sc.ReportVariant = types.ReportEnhanced
		}
		if sc.Repetitions == 0 {
			sc.Repetitions = 1
		}
	}
}
