package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pbip-bench/runner/config"
	"github.com/pbip-bench/runner/types"
)

// ProjectName is the fixed name used for every generated project root.
const ProjectName = "PerfTest"

const columnsPerTable = 5

// Generator materializes synthetic PBIP project trees from a ScenarioSpec.
// The trees mimic the layout a real project would have (pbip manifest,
// semantic model definition, report definition) but their content is filler
// sized to the spec, not a meaningful model.
type Generator struct {
	log logrus.FieldLogger
}

// NewGenerator creates a fixture generator.
func NewGenerator(log logrus.FieldLogger) *Generator {
	return &Generator{
		log: log.WithField("component", "fixture"),
	}
}

// Generate builds a project tree under rootDir and returns the project path.
// Filesystem errors propagate to the caller; no partial cleanup is attempted
// here, the scratch root owns removal.
func (g *Generator) Generate(rootDir string, spec *config.ScenarioSpec) (string, error) {
	projectDir := filepath.Join(rootDir, ProjectName)
	semanticDir := filepath.Join(projectDir, ProjectName+".SemanticModel")
	tablesDir := filepath.Join(semanticDir, "definition", "tables")
	relationshipsDir := filepath.Join(semanticDir, "definition", "relationships")
	reportDir := filepath.Join(projectDir, ProjectName+".Report")

	for _, dir := range []string{tablesDir, relationshipsDir, reportDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create fixture directory: %w", err)
		}
	}

	pbipPath := filepath.Join(projectDir, ProjectName+".pbip")
	if err := os.WriteFile(pbipPath, []byte(`{"version": "1.0"}`), 0644); err != nil {
		return "", fmt.Errorf("failed to write pbip manifest: %w", err)
	}

	if err := g.writeTables(tablesDir, spec); err != nil {
		return "", err
	}
	if err := g.writeRelationships(relationshipsDir, spec.Tables); err != nil {
		return "", err
	}

	var err error
	switch spec.ReportVariant {
	case types.ReportLegacy:
		err = g.writeLegacyReport(reportDir)
	default:
		err = g.writeEnhancedReport(reportDir, spec)
	}
	if err != nil {
		return "", err
	}

	g.log.WithFields(logrus.Fields{
		"tier":    spec.Label,
		"tables":  spec.Tables,
		"visuals": spec.Visuals,
		"path":    projectDir,
	}).Debug("Generated fixture")

	return projectDir, nil
}

// TableName returns the declared name of the table at 0-based index i.
// Every third table gets a name with an embedded space to exercise the
// connector's quoting paths.
func TableName(i int) string {
	if i%3 == 0 {
		return fmt.Sprintf("Table With Spaces_%03d", i+1)
	}
	return fmt.Sprintf("Table_%03d", i+1)
}

func (g *Generator) writeTables(tablesDir string, spec *config.ScenarioSpec) error {
	// Rough size approximation, the same token repetition the original
	// projects used. Output is not byte-exact to avg_table_size_kb.
	padding := "    " + strings.Repeat("   ", int(spec.AvgTableSizeKB*100))

	for i := 0; i < spec.Tables; i++ {
		plainName := fmt.Sprintf("Table_%03d", i+1)

		var b strings.Builder
		fmt.Fprintf(&b, "table %s\n", TableName(i))
		for j := 0; j < columnsPerTable; j++ {
			fmt.Fprintf(&b, "    column Column_%02d\n        dataType: string\n", j+1)
		}
		if i%2 == 0 {
			// Measures reference the plain name even when the declared
			// name has spaces, which is exactly the quoting defect the
			// fix operation exists for.
			fmt.Fprintf(&b, "\n    measure MeasureCount = COUNTROWS(%s)\n", plainName)
			fmt.Fprintf(&b, "    measure MeasureSum = SUM(%s[Column_01])\n", plainName)
		}
		b.WriteString(padding)
		b.WriteString("\n")

		path := filepath.Join(tablesDir, plainName+".tmdl")
		if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("failed to write table %s: %w", plainName, err)
		}
	}
	return nil
}

func (g *Generator) writeRelationships(relationshipsDir string, tables int) error {
	// A linear many-to-one chain: table k joins to table k+1 on Column_01.
	for k := 1; k < tables; k++ {
		content := fmt.Sprintf(`relationship rel_%d
  cardinality: manyToOne
  fromTable: Table_%03d
  fromColumn: Column_01
  toTable: Table_%03d
  toColumn: Column_01
`, k, k, k+1)

		path := filepath.Join(relationshipsDir, fmt.Sprintf("rel_%d.tmdl", k))
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write relationship rel_%d: %w", k, err)
		}
	}
	return nil
}

func (g *Generator) writeEnhancedReport(reportDir string, spec *config.ScenarioSpec) error {
	definitionDir := filepath.Join(reportDir, "definition")
	pagesDir := filepath.Join(definitionDir, "pages")
	if err := os.MkdirAll(pagesDir, 0755); err != nil {
		return fmt.Errorf("failed to create report definition: %w", err)
	}

	if err := os.WriteFile(filepath.Join(definitionDir, "report.json"), []byte(`{"version": "2.0"}`), 0644); err != nil {
		return fmt.Errorf("failed to write report manifest: %w", err)
	}

	pagesIndex := map[string]interface{}{
		"pages": []map[string]string{
			{"name": "Page1", "displayName": "Page 1"},
		},
	}
	if err := writeJSON(filepath.Join(pagesDir, "pages.json"), pagesIndex); err != nil {
		return err
	}

	for v := 0; v < spec.Visuals; v++ {
		pageID := fmt.Sprintf("page_%02d", v/5+1)
		visualID := fmt.Sprintf("visual_%03d", v+1)
		visualDir := filepath.Join(pagesDir, pageID, "visuals", visualID)
		if err := os.MkdirAll(visualDir, 0755); err != nil {
			return fmt.Errorf("failed to create visual directory: %w", err)
		}

		visual := map[string]interface{}{
			"version": "1.0",
			"config": map[string]interface{}{
				"type": "card",
				"projections": map[string]interface{}{
					"Values": []map[string]interface{}{
						{
							"SourceRef": map[string]string{
								"Entity":   fmt.Sprintf("Table_%03d", v%spec.Tables+1),
								"Property": "Column_01",
							},
						},
					},
				},
			},
		}
		if err := writeJSON(filepath.Join(visualDir, "visual.json"), visual); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) writeLegacyReport(reportDir string) error {
	report := map[string]interface{}{
		"version":  "1.0",
		"sections": []interface{}{},
	}
	return writeJSON(filepath.Join(reportDir, "report.json"), report)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
