package types

// ReportVariant selects the on-disk shape of a fixture's report subtree.
type ReportVariant string

const (
	// ReportEnhanced is the multi-file PBIR format: a report manifest, a
	// page index and one descriptor file per visual.
	ReportEnhanced ReportVariant = "enhanced"
	// ReportLegacy is the consolidated PBIR format: a single report.json
	// with an empty section list.
	ReportLegacy ReportVariant = "legacy"
)

// Sample is one timed measurement of one connector operation within one
// scenario tier. Tier and Operation stay separate fields so grouping never
// has to parse the composite label back apart.
type Sample struct {
	Operation string  `json:"operation"`
	Tier      string  `json:"tier"`
	TimeMs    float64 `json:"time_ms"`
}

// Label returns the composite "<operation>_<tier>" form used in the
// persisted artifact.
func (s Sample) Label() string {
	return s.Operation + "_" + s.Tier
}

// SummaryRecord aggregates a full sample sequence: per-tier average latency,
// the scaling factor between the largest and smallest tier, and a coarse
// growth classification.
type SummaryRecord struct {
	TierAverages   map[string]float64 `json:"tier_averages_ms"`
	ScalingFactor  float64            `json:"scaling_factor"`
	TableGrowth    float64            `json:"table_growth"`
	Classification string             `json:"classification"`
}

// EnvironmentInfo captures host details recorded alongside the results so
// runs on different machines stay comparable.
type EnvironmentInfo struct {
	OS            string  `json:"os"`
	Architecture  string  `json:"architecture"`
	CPUModel      string  `json:"cpu_model"`
	CPUCores      int     `json:"cpu_cores"`
	TotalMemoryGB float64 `json:"total_memory_gb"`
	GoVersion     string  `json:"go_version"`
}

// BenchmarkResult is the full record of one harness run.
type BenchmarkResult struct {
	RunID       string          `json:"run_id"`
	TestName    string          `json:"test_name"`
	Timestamp   string          `json:"timestamp"`
	Environment EnvironmentInfo `json:"environment"`
	Samples     []Sample        `json:"samples"`
	Summary     SummaryRecord   `json:"summary"`
}
