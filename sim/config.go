package sim

import (
	"fmt"

	"github.com/ankit-iitb/sandstorm-simulator/core/dispatch"
	"github.com/ankit-iitb/sandstorm-simulator/core/workload"
)

// Config defines a closed-loop simulation run.
type Config struct {
	// Requests is the total number of requests to simulate.
	Requests uint64 `json:"requests"`
	// Rate is the open-loop arrival rate in requests per second of
	// virtual time.
	Rate     uint64          `json:"rate"`
	Workload workload.Config `json:"workload"`
	Dispatch dispatch.Config `json:"dispatch"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.Requests == 0 {
		c.Requests = 1_000_000
	}
	if c.Rate == 0 {
		c.Rate = 100_000
	}
	c.Workload.SetDefaults()
	c.Dispatch.SetDefaults()
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.Requests < 1 {
		return fmt.Errorf("sim: requests must be at least 1, got %d", c.Requests)
	}
	if c.Rate < 1 {
		return fmt.Errorf("sim: rate must be at least 1, got %d", c.Rate)
	}
	if err := c.Workload.Validate(); err != nil {
		return err
	}
	return c.Dispatch.Validate()
}
