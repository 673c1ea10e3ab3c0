package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/pbip-bench/runner/analyzer"
	"github.com/pbip-bench/runner/bench"
	"github.com/pbip-bench/runner/config"
	"github.com/pbip-bench/runner/connector"
	"github.com/pbip-bench/runner/exporter"
	"github.com/pbip-bench/runner/fixture"
	"github.com/pbip-bench/runner/metrics"
	"github.com/pbip-bench/runner/storage"
	"github.com/pbip-bench/runner/types"
)

func main() {
	configPath := pflag.String("config", "", "Path to YAML configuration file (built-in tiers when omitted)")
	outputDir := pflag.String("output", "results", "Directory to store the results artifact")
	history := pflag.Bool("history", false, "Record the run in the sqlite history database")
	debug := pflag.BoolP("debug", "d", false, "Enable debug output")
	pflag.Parse()

	log := logrus.New()
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log, *configPath, *outputDir, *history); err != nil {
		log.Fatalf("Benchmark run failed: %v", err)
	}
}

// run owns the whole lifecycle so that deferred cleanup fires on every exit
// path; main only translates its error into the process exit code.
func run(log *logrus.Logger, configPath, outputDir string, forceHistory bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if forceHistory {
		cfg.History.Enabled = true
	}

	log.Info("PBIP CONNECTOR - PERFORMANCE BENCHMARKS")
	log.Infof("Test: %s (%d tiers)", cfg.TestName, len(cfg.Scenarios))

	scratch, err := fixture.NewScratchRoot(log)
	if err != nil {
		return err
	}
	defer scratch.Release()

	runner := bench.NewRunner(log, fixture.NewGenerator(log), connector.NewFactory(log))
	samples, err := runner.Run(scratch.Path(), cfg.Scenarios)
	if err != nil {
		return err
	}

	summary, err := analyzer.NewAggregator(log).Summarize(cfg.Scenarios, samples)
	if err != nil {
		return err
	}

	result := &types.BenchmarkResult{
		RunID:       uuid.NewString(),
		TestName:    cfg.TestName,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: metrics.CollectEnvironment(log),
		Samples:     samples,
		Summary:     summary,
	}

	sink := exporter.NewReportSink(log)

	tiers := make([]string, 0, len(cfg.Scenarios))
	for _, sc := range cfg.Scenarios {
		tiers = append(tiers, sc.Label)
	}
	sink.PrintSummary(tiers, result)

	artifactPath := filepath.Join(outputDir, "benchmark_results.json")
	if err := sink.Emit(result, artifactPath); err != nil {
		return fmt.Errorf("failed to emit results: %w", err)
	}

	if cfg.History.Enabled {
		// History is a secondary sink; a failure here is reported but
		// does not invalidate the run.
		if err := saveHistory(log, cfg.History.Path, result); err != nil {
			log.WithError(err).Warn("Failed to record run history")
		}
	}

	return nil
}

func saveHistory(log *logrus.Logger, path string, result *types.BenchmarkResult) error {
	store, err := storage.Open(path, log)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRun(result)
}
