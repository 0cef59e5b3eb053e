// Package poller provides the bounded-duration ingestion loop that samples the
// bike-share status feed and persists availability snapshots.
package poller

import "time"

// Default schedule, matching the feed's update cadence: one fetch every five
// minutes for a 48-hour collection window, with a 20-second fetch budget.
const (
	DefaultInterval     = 300 * time.Second
	DefaultRunDuration  = 48 * time.Hour
	DefaultFetchTimeout = 20 * time.Second
)

// Config holds configuration for the poller.
type Config struct {
	// Interval is the fixed pause between cycle starts. Latency from slow
	// fetches is not compensated; the series tolerates the drift.
	Interval time.Duration

	// RunDuration is the total wall-clock run length. The loop stops issuing
	// cycles once the deadline derived from it passes.
	RunDuration time.Duration

	// FetchTimeout bounds one outbound fetch, independent of Interval.
	FetchTimeout time.Duration

	// AuditDir is the directory for raw response archive files.
	// Empty disables the audit artifact.
	AuditDir string
}

// DefaultConfig returns the default poller configuration.
func DefaultConfig() Config {
	return Config{
		Interval:     DefaultInterval,
		RunDuration:  DefaultRunDuration,
		FetchTimeout: DefaultFetchTimeout,
	}
}

// withDefaults fills in zero values.
func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.RunDuration <= 0 {
		c.RunDuration = DefaultRunDuration
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	return c
}
