package connector

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// unquotedSpacedRef matches a table reference containing spaces that is
// followed by a column selector but not wrapped in single quotes, e.g.
// `Table With Spaces_004[Column_01]`.
var unquotedSpacedRef = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]* [A-Za-z0-9_ ]*[A-Za-z0-9_])\[`)

// FileConnector is a plain-filesystem PBIP connector. It loads the whole
// project tree into memory and runs its operations as full passes over that
// content, writing mutated files back in place. It deliberately does not
// understand TMDL semantics; syntax checks are line-shape checks only.
type FileConnector struct {
	log        logrus.FieldLogger
	opts       Options
	projectDir string
	files      map[string]string // relative path -> content
}

// NewFileConnector creates an unloaded connector.
func NewFileConnector(log logrus.FieldLogger, opts Options) *FileConnector {
	return &FileConnector{
		log:   log.WithField("component", "connector"),
		opts:  opts,
		files: make(map[string]string),
	}
}

// NewFactory returns a Factory producing FileConnectors bound to log.
func NewFactory(log logrus.FieldLogger) Factory {
	return func(opts Options) Connector {
		return NewFileConnector(log, opts)
	}
}

// LoadProject reads the project manifest and every .tmdl and .json file
// under path into memory.
func (c *FileConnector) LoadProject(path string) error {
	manifests, err := filepath.Glob(filepath.Join(path, "*.pbip"))
	if err != nil {
		return fmt.Errorf("failed to scan for pbip manifest: %w", err)
	}
	if len(manifests) == 0 {
		return fmt.Errorf("no .pbip manifest found under %s", path)
	}

	c.projectDir = path
	c.files = make(map[string]string)

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".tmdl", ".json", ".pbip":
		default:
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		c.files[rel] = string(data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"path":  path,
		"files": len(c.files),
	}).Debug("Project loaded")
	return nil
}

// ValidateTMDLSyntax runs shape checks over every loaded TMDL file: each
// file must open with a table or relationship declaration and use spaces,
// not tabs, for indentation.
func (c *FileConnector) ValidateTMDLSyntax() error {
	if err := c.requireLoaded(); err != nil {
		return err
	}

	var problems []string
	for rel, content := range c.files {
		if filepath.Ext(rel) != ".tmdl" {
			continue
		}
		decl := firstNonBlankLine(content)
		if !strings.HasPrefix(decl, "table ") && !strings.HasPrefix(decl, "relationship ") {
			problems = append(problems, fmt.Sprintf("%s: missing table or relationship declaration", rel))
		}
		if strings.Contains(content, "\t") {
			problems = append(problems, fmt.Sprintf("%s: tab indentation", rel))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("tmdl validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// FixAllDAXQuoting wraps spaced table references in measure expressions in
// single quotes and writes changed files back.
func (c *FileConnector) FixAllDAXQuoting() error {
	if err := c.requireLoaded(); err != nil {
		return err
	}

	fixed := 0
	for rel, content := range c.files {
		if filepath.Ext(rel) != ".tmdl" {
			continue
		}
		updated := fixQuoting(content)
		if updated == content {
			continue
		}
		if err := c.writeBack(rel, updated); err != nil {
			return err
		}
		fixed++
	}
	c.log.WithField("files", fixed).Debug("DAX quoting fixed")
	return nil
}

// RenameTableInFiles replaces every reference to oldName across all loaded
// files and persists the changes.
func (c *FileConnector) RenameTableInFiles(oldName, newName string) error {
	if err := c.requireLoaded(); err != nil {
		return err
	}

	renamed := 0
	for rel, content := range c.files {
		if !strings.Contains(content, oldName) {
			continue
		}
		if err := c.writeBack(rel, strings.ReplaceAll(content, oldName, newName)); err != nil {
			return err
		}
		renamed++
	}
	if renamed == 0 {
		return fmt.Errorf("table %q not found in any project file", oldName)
	}
	c.log.WithFields(logrus.Fields{
		"old":   oldName,
		"new":   newName,
		"files": renamed,
	}).Debug("Table renamed")
	return nil
}

func (c *FileConnector) requireLoaded() error {
	if c.projectDir == "" {
		return fmt.Errorf("no project loaded")
	}
	return nil
}

func (c *FileConnector) writeBack(rel, content string) error {
	path := filepath.Join(c.projectDir, rel)
	if c.opts.AutoBackup {
		if err := os.WriteFile(path+".bak", []byte(c.files[rel]), 0644); err != nil {
			return fmt.Errorf("failed to back up %s: %w", rel, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	c.files[rel] = content
	return nil
}

func fixQuoting(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "measure ") {
			continue
		}
		lines[i] = unquotedSpacedRef.ReplaceAllString(line, "'$1'[")
	}
	return strings.Join(lines, "\n")
}

func firstNonBlankLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
