package fixture

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ScratchRoot is the temporary directory a run generates its fixtures under.
// It exists for exactly one run: acquire it before the first scenario, defer
// Release, and every exit path removes the whole tree. Removal errors are
// swallowed so cleanup never masks the failure that triggered it.
type ScratchRoot struct {
	path     string
	log      logrus.FieldLogger
	released bool
}

// NewScratchRoot creates the scratch directory for a run.
func NewScratchRoot(log logrus.FieldLogger) (*ScratchRoot, error) {
	path, err := os.MkdirTemp("", "pbip_perf_test_")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &ScratchRoot{
		path: path,
		log:  log.WithField("component", "scratch"),
	}, nil
}

// Path returns the scratch directory path.
func (s *ScratchRoot) Path() string {
	return s.path
}

// Release removes the scratch tree. Safe to call more than once.
func (s *ScratchRoot) Release() {
	if s.released {
		return
	}
	s.released = true
	if err := os.RemoveAll(s.path); err != nil {
		s.log.WithError(err).WithField("path", s.path).Debug("Scratch cleanup failed")
	}
}
