package config

import (
	"fmt"

	"github.com/pbip-bench/runner/types"
)

// ScenarioSpec describes one benchmark tier. It fully determines the shape
// of the fixture generated for that tier and is immutable once loaded.
type ScenarioSpec struct {
	Label          string              `yaml:"label"`
	Tables         int                 `yaml:"tables"`
	Visuals        int                 `yaml:"visuals"`
	AvgTableSizeKB float64             `yaml:"avg_table_size_kb"`
	ReportVariant  types.ReportVariant `yaml:"report_variant"`
	Repetitions    int                 `yaml:"repetitions"`
}

// Config represents a full harness configuration. Scenarios run in the
// declared order; the first entry is treated as the smallest tier and the
// last as the largest when deriving the scaling factor.
type Config struct {
	TestName    string          `yaml:"test_name"`
	Description string          `yaml:"description"`
	Scenarios   []*ScenarioSpec `yaml:"scenarios"`
	History     HistoryConfig   `yaml:"history"`
}

// HistoryConfig controls the optional sqlite run history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the built-in configuration matching the original tool's
// three tiers.
func Default() *Config {
	return &Config{
		TestName:    "pbip-connector-benchmarks",
		Description: "PBIP connector latency scaling across project sizes",
		Scenarios: []*ScenarioSpec{
			{Label: "small", Tables: 10, Visuals: 20, AvgTableSizeKB: 5, ReportVariant: types.ReportEnhanced, Repetitions: 1},
			{Label: "medium", Tables: 50, Visuals: 100, AvgTableSizeKB: 10, ReportVariant: types.ReportEnhanced, Repetitions: 1},
			{Label: "large", Tables: 200, Visuals: 500, AvgTableSizeKB: 15, ReportVariant: types.ReportEnhanced, Repetitions: 1},
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "results/history.db",
		},
	}
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.TestName == "" {
		return fmt.Errorf("test_name is required")
	}

	if len(cfg.Scenarios) == 0 {
		return fmt.Errorf("at least one scenario is required")
	}

	seen := make(map[string]bool, len(cfg.Scenarios))
	for _, sc := range cfg.Scenarios {
		if sc.Label == "" {
			return fmt.Errorf("scenario label is required")
		}
		if seen[sc.Label] {
			return fmt.Errorf("duplicate scenario label: %s", sc.Label)
		}
		seen[sc.Label] = true

		if sc.Tables <= 0 {
			return fmt.Errorf("scenario %s: tables must be greater than 0", sc.Label)
		}
		if sc.Visuals < 0 {
			return fmt.Errorf("scenario %s: visuals must not be negative", sc.Label)
		}
		if sc.AvgTableSizeKB < 0 {
			return fmt.Errorf("scenario %s: avg_table_size_kb must not be negative", sc.Label)
		}
		switch sc.ReportVariant {
		case types.ReportEnhanced, types.ReportLegacy:
		default:
			return fmt.Errorf("scenario %s: invalid report_variant %q", sc.Label, sc.ReportVariant)
		}
		if sc.Repetitions < 1 {
			return fmt.Errorf("scenario %s: repetitions must be at least 1", sc.Label)
		}
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}

	return nil
}
