package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pbip-bench/runner/schema"
	"github.com/pbip-bench/runner/types"
)

// ReportSink persists a run's full sample set and summary to a JSON
// artifact and traces a human-readable summary. Trace output is
// best-effort; only the artifact write can fail the run.
type ReportSink struct {
	log logrus.FieldLogger
}

// NewReportSink creates a report sink tracing to log.
func NewReportSink(log logrus.FieldLogger) *ReportSink {
	return &ReportSink{
		log: log.WithField("component", "exporter"),
	}
}

type artifactBenchmark struct {
	Operation string  `json:"operation"`
	TimeMs    float64 `json:"time_ms"`
}

type artifact struct {
	RunID       string                 `json:"run_id"`
	TestName    string                 `json:"test_name"`
	Timestamp   string                 `json:"timestamp"`
	Environment types.EnvironmentInfo  `json:"environment"`
	Benchmarks  []artifactBenchmark    `json:"benchmarks"`
	Summary     map[string]interface{} `json:"summary"`
}

// Emit writes the artifact for result to outputPath, validating it against
// the artifact schema first.
func (rs *ReportSink) Emit(result *types.BenchmarkResult, outputPath string) error {
	art := artifact{
		RunID:       result.RunID,
		TestName:    result.TestName,
		Timestamp:   result.Timestamp,
		Environment: result.Environment,
		Benchmarks:  make([]artifactBenchmark, 0, len(result.Samples)),
		Summary:     make(map[string]interface{}, len(result.Summary.TierAverages)+3),
	}

	for _, s := range result.Samples {
		art.Benchmarks = append(art.Benchmarks, artifactBenchmark{
			Operation: s.Label(),
			TimeMs:    s.TimeMs,
		})
	}
	for tier, avg := range result.Summary.TierAverages {
		art.Summary[tier+"_avg_ms"] = avg
	}
	art.Summary["scaling_factor"] = result.Summary.ScalingFactor
	art.Summary["table_growth"] = result.Summary.TableGrowth
	art.Summary["classification"] = result.Summary.Classification

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := schema.ValidateArtifact(data); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	rs.log.WithField("path", outputPath).Info("Results saved")
	return nil
}

// PrintSummary traces the per-tier averages and the scaling verdict in the
// original tool's shape.
func (rs *ReportSink) PrintSummary(specs []string, result *types.BenchmarkResult) {
	rs.log.Info("PERFORMANCE SUMMARY")
	for _, tier := range specs {
		avg, ok := result.Summary.TierAverages[tier]
		if !ok {
			continue
		}
		rs.log.Infof("%s project average: %.2fms", tier, avg)
	}

	s := result.Summary
	rs.log.Infof("Scaling factor (largest vs smallest): %.1fx", s.ScalingFactor)
	rs.log.Infof("Table growth: %.0fx", s.TableGrowth)

	switch s.Classification {
	case "sub-linear":
		rs.log.Info("Sub-linear scaling, performance is good")
	case "linear":
		rs.log.Warn("Linear scaling, consider parallelization for very large projects")
	default:
		rs.log.Warn("Super-linear scaling, possible optimization needed")
	}
}
