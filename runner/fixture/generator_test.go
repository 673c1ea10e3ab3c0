package fixture

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbip-bench/runner/config"
	"github.com/pbip-bench/runner/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return log
}

func generate(t *testing.T, spec *config.ScenarioSpec) string {
	t.Helper()
	gen := NewGenerator(testLogger())
	path, err := gen.Generate(t.TempDir(), spec)
	require.NoError(t, err)
	return path
}

func countMatching(t *testing.T, root, name string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestGenerateEnhancedCounts(t *testing.T) {
	spec := &config.ScenarioSpec{
		Label:         "small",
		Tables:        7,
		Visuals:       12,
		ReportVariant: types.ReportEnhanced,
		Repetitions:   1,
	}
	path := generate(t, spec)

	tables, err := os.ReadDir(filepath.Join(path, "PerfTest.SemanticModel", "definition", "tables"))
	require.NoError(t, err)
	assert.Len(t, tables, 7)

	rels, err := os.ReadDir(filepath.Join(path, "PerfTest.SemanticModel", "definition", "relationships"))
	require.NoError(t, err)
	assert.Len(t, rels, 6)

	assert.Equal(t, 12, countMatching(t, path, "visual.json"))

	// 12 visuals at 5 per page need 3 page directories.
	pagesDir := filepath.Join(path, "PerfTest.Report", "definition", "pages")
	entries, err := os.ReadDir(pagesDir)
	require.NoError(t, err)
	pageDirs := 0
	for _, e := range entries {
		if e.IsDir() {
			pageDirs++
		}
	}
	assert.Equal(t, 3, pageDirs)

	// Project and report manifests exist.
	assert.FileExists(t, filepath.Join(path, "PerfTest.pbip"))
	assert.FileExists(t, filepath.Join(path, "PerfTest.Report", "definition", "report.json"))
	assert.FileExists(t, filepath.Join(pagesDir, "pages.json"))
}

func TestGenerateLegacyReport(t *testing.T) {
	spec := &config.ScenarioSpec{
		Label:         "small",
		Tables:        3,
		Visuals:       50,
		ReportVariant: types.ReportLegacy,
		Repetitions:   1,
	}
	path := generate(t, spec)

	// Visuals are ignored in the legacy variant: one consolidated file.
	assert.Equal(t, 0, countMatching(t, path, "visual.json"))

	data, err := os.ReadFile(filepath.Join(path, "PerfTest.Report", "report.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sections": []`)
}

func TestTableNaming(t *testing.T) {
	for i := 0; i < 12; i++ {
		name := TableName(i)
		if i%3 == 0 {
			assert.Contains(t, name, " ", "table index %d should have an embedded space", i)
		} else {
			assert.NotContains(t, name, " ", "table index %d should be plain", i)
		}
	}
}

func TestTableContent(t *testing.T) {
	spec := &config.ScenarioSpec{
		Label:         "small",
		Tables:        4,
		ReportVariant: types.ReportLegacy,
		Repetitions:   1,
	}
	path := generate(t, spec)
	tablesDir := filepath.Join(path, "PerfTest.SemanticModel", "definition", "tables")

	for i := 0; i < 4; i++ {
		data, err := os.ReadFile(filepath.Join(tablesDir, fmt.Sprintf("Table_%03d.tmdl", i+1)))
		require.NoError(t, err)
		content := string(data)

		assert.True(t, strings.HasPrefix(content, "table "+TableName(i)+"\n"))
		assert.Equal(t, 5, strings.Count(content, "column Column_"))
		assert.Equal(t, 5, strings.Count(content, "dataType: string"))

		measures := strings.Count(content, "measure ")
		if i%2 == 0 {
			assert.Equal(t, 2, measures, "even table index %d should carry two measures", i)
		} else {
			assert.Zero(t, measures, "odd table index %d should carry no measures", i)
		}
	}
}

func TestRelationshipChain(t *testing.T) {
	spec := &config.ScenarioSpec{
		Label:         "small",
		Tables:        5,
		ReportVariant: types.ReportLegacy,
		Repetitions:   1,
	}
	path := generate(t, spec)
	relsDir := filepath.Join(path, "PerfTest.SemanticModel", "definition", "relationships")

	for k := 1; k < 5; k++ {
		data, err := os.ReadFile(filepath.Join(relsDir, fmt.Sprintf("rel_%d.tmdl", k)))
		require.NoError(t, err)
		content := string(data)

		assert.Contains(t, content, "cardinality: manyToOne")
		assert.Contains(t, content, fmt.Sprintf("fromTable: Table_%03d", k))
		assert.Contains(t, content, fmt.Sprintf("toTable: Table_%03d", k+1))
		assert.Equal(t, 2, strings.Count(content, "Column_01"))
	}
}

func TestPaddingScalesWithTableSize(t *testing.T) {
	smallSpec := &config.ScenarioSpec{Label: "a", Tables: 1, AvgTableSizeKB: 1, ReportVariant: types.ReportLegacy, Repetitions: 1}
	bigSpec := &config.ScenarioSpec{Label: "b", Tables: 1, AvgTableSizeKB: 10, ReportVariant: types.ReportLegacy, Repetitions: 1}

	smallPath := generate(t, smallSpec)
	bigPath := generate(t, bigSpec)

	smallInfo, err := os.Stat(filepath.Join(smallPath, "PerfTest.SemanticModel", "definition", "tables", "Table_001.tmdl"))
	require.NoError(t, err)
	bigInfo, err := os.Stat(filepath.Join(bigPath, "PerfTest.SemanticModel", "definition", "tables", "Table_001.tmdl"))
	require.NoError(t, err)

	assert.Greater(t, bigInfo.Size(), smallInfo.Size()*5)
}

func TestScratchRootRelease(t *testing.T) {
	scratch, err := NewScratchRoot(testLogger())
	require.NoError(t, err)
	require.DirExists(t, scratch.Path())

	require.NoError(t, os.WriteFile(filepath.Join(scratch.Path(), "leftover"), []byte("x"), 0644))

	scratch.Release()
	assert.NoDirExists(t, scratch.Path())

	// Second release is a no-op.
	scratch.Release()
}
