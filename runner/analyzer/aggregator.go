package analyzer

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pbip-bench/runner/config"
	"github.com/pbip-bench/runner/types"
)

// Growth classifications emitted in the summary.
const (
	ClassSubLinear   = "sub-linear"
	ClassLinear      = "linear"
	ClassSuperLinear = "super-linear"
)

// Classification thresholds on the scaling factor. These are heuristic
// policy inherited from the original tool, not derived from the configured
// table growth; the summary reports both numbers side by side so the
// mismatch stays visible.
const (
	subLinearMax = 30.0
	linearMax    = 100.0
)

// ErrNoSamples is returned when a configured tier contributed no samples.
var ErrNoSamples = errors.New("tier has no samples")

// Aggregator turns an ordered sample sequence into a SummaryRecord.
type Aggregator struct {
	log logrus.FieldLogger
}

// NewAggregator creates an aggregator.
func NewAggregator(log logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		log: log.WithField("component", "analyzer"),
	}
}

// Summarize computes per-tier averages, the scaling factor between the last
// and first configured tier, and the growth classification. Samples are
// grouped by their structured Tier field; specs must list tiers in
// ascending size order, as configured for the run.
func (a *Aggregator) Summarize(specs []*config.ScenarioSpec, samples []types.Sample) (types.SummaryRecord, error) {
	if len(specs) == 0 {
		return types.SummaryRecord{}, fmt.Errorf("no scenarios configured")
	}

	averages := make(map[string]float64, len(specs))
	for _, spec := range specs {
		sum, count := 0.0, 0
		for _, s := range samples {
			if s.Tier == spec.Label {
				sum += s.TimeMs
				count++
			}
		}
		if count == 0 {
			return types.SummaryRecord{}, fmt.Errorf("%w: %s", ErrNoSamples, spec.Label)
		}
		averages[spec.Label] = sum / float64(count)
	}

	smallest, largest := specs[0], specs[len(specs)-1]
	smallAvg, largeAvg := averages[smallest.Label], averages[largest.Label]

	// A zero smallest average would divide out to infinity; the original
	// tool reports 0 in that case and only that case.
	factor := 0.0
	if smallAvg > 0 {
		factor = largeAvg / smallAvg
	}

	record := types.SummaryRecord{
		TierAverages:   averages,
		ScalingFactor:  factor,
		TableGrowth:    float64(largest.Tables) / float64(smallest.Tables),
		Classification: Classify(factor),
	}

	a.log.WithFields(logrus.Fields{
		"scaling_factor": fmt.Sprintf("%.1f", record.ScalingFactor),
		"table_growth":   fmt.Sprintf("%.1f", record.TableGrowth),
		"classification": record.Classification,
	}).Debug("Summarized samples")

	return record, nil
}

// Classify maps a scaling factor onto a growth regime.
func Classify(factor float64) string {
	switch {
	case factor < subLinearMax:
		return ClassSubLinear
	case factor < linearMax:
		return ClassLinear
	default:
		return ClassSuperLinear
	}
}
