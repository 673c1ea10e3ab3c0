package bench

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Timer takes single-sample wall-clock measurements of connector
// operations. There is no warm-up, repetition or outlier handling here;
// precision is whatever the host's monotonic clock gives us.
type Timer struct {
	log logrus.FieldLogger
}

// NewTimer creates a timer tracing to log.
func NewTimer(log logrus.FieldLogger) *Timer {
	return &Timer{
		log: log.WithField("component", "timer"),
	}
}

// Measure invokes op once and returns its wall-clock duration in
// milliseconds. Operation errors propagate unmodified; the elapsed time is
// still returned so a caller can see how long a failure took.
func (t *Timer) Measure(label string, op func() error) (float64, error) {
	start := time.Now()
	err := op()
	elapsedMs := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		return elapsedMs, err
	}
	t.log.Infof("  %s: %.2fms", label, elapsedMs)
	return elapsedMs, nil
}
