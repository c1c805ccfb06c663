// Package worker recomputes event reports in the background.
package worker

import (
	"time"
)

// ReportConfig holds configuration for the report job.
type ReportConfig struct {
	// Concurrency is the number of events recomputed in parallel.
	// Default: 3
	Concurrency int

	// Timeout bounds the recomputation of a single event.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultReportConfig returns the default report job configuration.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

func (c ReportConfig) withDefaults() ReportConfig {
	def := DefaultReportConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}
