package dispatch

import (
	"fmt"

	"github.com/ankit-iitb/sandstorm-simulator/core/sched"
)

// Config defines driver settings.
type Config struct {
	// Policy names the scheduling policy (fcfs, two-tier, sjf).
	Policy string `json:"policy"`
	// QuantumMicros bounds one execution slice. Zero runs every request
	// to completion, which leaves the policy's returning path unused.
	QuantumMicros float64 `json:"quantum_us"`
	// ChannelDepth is the arrival channel buffer used by producers.
	ChannelDepth int `json:"channel_depth"`
	// StatsEverySeconds is the period between counter snapshots.
	StatsEverySeconds float64 `json:"stats_every_seconds"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.Policy == "" {
		c.Policy = sched.NameTwoTier
	}
	if c.ChannelDepth == 0 {
		c.ChannelDepth = 1024
	}
	if c.StatsEverySeconds == 0 {
		c.StatsEverySeconds = 1
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	switch c.Policy {
	case sched.NameFCFS, sched.NameTwoTier, sched.NameSJF:
	default:
		return fmt.Errorf("dispatch: unknown policy %q", c.Policy)
	}
	if c.QuantumMicros < 0 {
		return fmt.Errorf("dispatch: quantum_us must not be negative, got %v", c.QuantumMicros)
	}
	if c.ChannelDepth < 1 {
		return fmt.Errorf("dispatch: channel_depth must be at least 1, got %d", c.ChannelDepth)
	}
	if c.StatsEverySeconds <= 0 {
		return fmt.Errorf("dispatch: stats_every_seconds must be positive, got %v", c.StatsEverySeconds)
	}
	return nil
}
