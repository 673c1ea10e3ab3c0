// Package connector defines the contract the harness drives and a
// file-based PBIP connector implementing it. The harness itself only
// depends on the Connector interface; anything that can load a project
// tree and run the four operations can be benchmarked.
package connector

// Options configures a connector instance.
type Options struct {
	// AutoBackup writes a .bak copy of every file before mutating it.
	// The harness disables it: fixtures are synthetic and regenerated
	// per run.
	AutoBackup bool
}

// Connector is the operation surface measured by the benchmark. LoadProject
// must be called before any of the other operations.
type Connector interface {
	LoadProject(path string) error
	ValidateTMDLSyntax() error
	FixAllDAXQuoting() error
	RenameTableInFiles(oldName, newName string) error
}

// Factory constructs a fresh connector for one scenario.
type Factory func(Options) Connector
