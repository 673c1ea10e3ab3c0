package connector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbip-bench/runner/config"
	"github.com/pbip-bench/runner/fixture"
	"github.com/pbip-bench/runner/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return log
}

func generateProject(t *testing.T, tables, visuals int) string {
	t.Helper()
	gen := fixture.NewGenerator(testLogger())
	path, err := gen.Generate(t.TempDir(), &config.ScenarioSpec{
		Label:         "small",
		Tables:        tables,
		Visuals:       visuals,
		ReportVariant: types.ReportEnhanced,
		Repetitions:   1,
	})
	require.NoError(t, err)
	return path
}

func loadedConnector(t *testing.T, tables, visuals int, opts Options) (*FileConnector, string) {
	t.Helper()
	path := generateProject(t, tables, visuals)
	conn := NewFileConnector(testLogger(), opts)
	require.NoError(t, conn.LoadProject(path))
	return conn, path
}

func TestLoadProjectAndValidate(t *testing.T) {
	conn, _ := loadedConnector(t, 6, 8, Options{})
	assert.NoError(t, conn.ValidateTMDLSyntax())
}

func TestLoadProjectWithoutManifest(t *testing.T) {
	conn := NewFileConnector(testLogger(), Options{})
	err := conn.LoadProject(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .pbip manifest")
}

func TestOperationsRequireLoadedProject(t *testing.T) {
	conn := NewFileConnector(testLogger(), Options{})
	assert.Error(t, conn.ValidateTMDLSyntax())
	assert.Error(t, conn.FixAllDAXQuoting())
	assert.Error(t, conn.RenameTableInFiles("Table_001", "X"))
}

func TestValidateRejectsMalformedTMDL(t *testing.T) {
	conn, path := loadedConnector(t, 3, 0, Options{})

	bad := filepath.Join(path, "PerfTest.SemanticModel", "definition", "tables", "Table_001.tmdl")
	require.NoError(t, os.WriteFile(bad, []byte("not a declaration\n"), 0644))
	require.NoError(t, conn.LoadProject(path))

	err := conn.ValidateTMDLSyntax()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing table or relationship declaration")
}

func TestFixAllDAXQuoting(t *testing.T) {
	conn, path := loadedConnector(t, 3, 0, Options{})

	tablePath := filepath.Join(path, "PerfTest.SemanticModel", "definition", "tables", "Table_002.tmdl")
	content := "table Table_002\n    column Column_01\n        dataType: string\n" +
		"    measure MeasureSum = SUM(Table With Spaces_001[Column_01])\n"
	require.NoError(t, os.WriteFile(tablePath, []byte(content), 0644))
	require.NoError(t, conn.LoadProject(path))

	require.NoError(t, conn.FixAllDAXQuoting())

	fixed, err := os.ReadFile(tablePath)
	require.NoError(t, err)
	assert.Contains(t, string(fixed), "SUM('Table With Spaces_001'[Column_01])")

	// A second pass finds nothing left to quote.
	require.NoError(t, conn.FixAllDAXQuoting())
	again, err := os.ReadFile(tablePath)
	require.NoError(t, err)
	assert.Equal(t, string(fixed), string(again))
}

func TestFixQuotingLeavesPlainRefsAlone(t *testing.T) {
	in := "    measure MeasureSum = SUM(Table_001[Column_01])"
	assert.Equal(t, in, fixQuoting(in))

	quoted := "    measure MeasureSum = SUM('Table With Spaces_001'[Column_01])"
	assert.Equal(t, quoted, fixQuoting(quoted))
}

func TestRenameTableInFiles(t *testing.T) {
	conn, path := loadedConnector(t, 4, 6, Options{})

	require.NoError(t, conn.RenameTableInFiles("Table_002", "Renamed Table"))

	tableData, err := os.ReadFile(filepath.Join(path, "PerfTest.SemanticModel", "definition", "tables", "Table_002.tmdl"))
	require.NoError(t, err)
	assert.Contains(t, string(tableData), "table Renamed Table")
	assert.NotContains(t, string(tableData), "Table_002")

	// Visual descriptors referencing the table are rewritten too. Visual
	// j projects table (j % tables) + 1, so visual_002 points at Table_002.
	visualData, err := os.ReadFile(filepath.Join(path, "PerfTest.Report", "definition", "pages",
		"page_01", "visuals", "visual_002", "visual.json"))
	require.NoError(t, err)
	assert.Contains(t, string(visualData), `"Entity": "Renamed Table"`)
}

func TestRenameUnknownTable(t *testing.T) {
	conn, _ := loadedConnector(t, 2, 0, Options{})
	err := conn.RenameTableInFiles("Table_999", "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAutoBackupWritesBakFiles(t *testing.T) {
	conn, path := loadedConnector(t, 2, 0, Options{AutoBackup: true})

	require.NoError(t, conn.RenameTableInFiles("Table_002", "Other"))

	bak := filepath.Join(path, "PerfTest.SemanticModel", "definition", "tables", "Table_002.tmdl.bak")
	data, err := os.ReadFile(bak)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Table_002")
}
