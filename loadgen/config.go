package loadgen

import "fmt"

// Placement pins the harness onto explicit resources instead of reading
// machine topology: how many sender/receiver pairs run, which one
// samples latency, and optionally which CPU cores they occupy.
type Placement struct {
	// Workers is the number of sender/receiver socket pairs.
	Workers int `json:"workers"`
	// MasterIndex selects the one worker that records latency samples.
	MasterIndex int `json:"master_index"`
	// Cores, when set, pins worker threads round-robin: worker w's
	// sender to Cores[2w mod len], its receiver to Cores[2w+1 mod len].
	// Pinning is best-effort and Linux-only.
	Cores []int `json:"cores"`
}

// Config defines the load generation run.
type Config struct {
	// ServerIP is the target address; tenant t is reached at
	// BasePort+t.
	ServerIP string `json:"server_ip"`
	BasePort int    `json:"base_port"`
	Tenants  int    `json:"tenants"`
	// Requests is how many requests each worker sends; Responses is how
	// many it waits for (defaults to Requests).
	Requests  uint64 `json:"requests"`
	Responses uint64 `json:"responses"`
	// Rate is each worker's open-loop send rate in requests per second.
	Rate uint64 `json:"rate"`
	// Warmup is how many responses the master discards before sampling
	// latency.
	Warmup uint64 `json:"warmup"`
	// ClientIP is the local bind address. ClientBasePort is worker 0's
	// local port, worker w binding ClientBasePort+w; -1 binds ephemeral
	// ports.
	ClientIP       string `json:"client_ip"`
	ClientBasePort int    `json:"client_base_port"`
	// IdleTimeoutSeconds makes a receiver give up after that long
	// without any response, so a lossy run still terminates.
	IdleTimeoutSeconds float64 `json:"idle_timeout_seconds"`
	// Seed drives tenant selection; each worker draws from its own
	// stream.
	Seed      uint64    `json:"seed"`
	Placement Placement `json:"placement"`

	// Targets overrides the derived per-tenant destination addresses,
	// "host:port" per tenant. Tests use it to aim at ephemeral ports.
	Targets []string `json:"-"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.ServerIP == "" {
		c.ServerIP = "127.0.0.1"
	}
	if c.BasePort == 0 {
		c.BasePort = 1024
	}
	if c.Tenants == 0 {
		c.Tenants = 8
	}
	// Long enough that the master still has samples after warmup.
	if c.Requests == 0 {
		c.Requests = 4_000_000
	}
	if c.Responses == 0 {
		c.Responses = c.Requests
	}
	if c.Rate == 0 {
		c.Rate = 100_000
	}
	if c.Warmup == 0 {
		c.Warmup = 2_000_000
	}
	if c.ClientIP == "" {
		c.ClientIP = "0.0.0.0"
	}
	if c.ClientBasePort == 0 {
		c.ClientBasePort = 49000
	}
	if c.IdleTimeoutSeconds == 0 {
		c.IdleTimeoutSeconds = 5
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Placement.Workers == 0 {
		c.Placement.Workers = 2
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.Placement.Workers < 1 {
		return fmt.Errorf("loadgen: workers must be at least 1, got %d", c.Placement.Workers)
	}
	if c.Placement.MasterIndex < 0 || c.Placement.MasterIndex >= c.Placement.Workers {
		return fmt.Errorf("loadgen: master_index %d outside workers [0, %d)", c.Placement.MasterIndex, c.Placement.Workers)
	}
	for _, core := range c.Placement.Cores {
		if core < 0 {
			return fmt.Errorf("loadgen: negative core id %d", core)
		}
	}
	if c.Tenants < 1 {
		return fmt.Errorf("loadgen: tenants must be at least 1, got %d", c.Tenants)
	}
	if len(c.Targets) == 0 {
		if c.BasePort < 1 || c.BasePort+c.Tenants-1 > 65535 {
			return fmt.Errorf("loadgen: tenant ports %d..%d out of range", c.BasePort, c.BasePort+c.Tenants-1)
		}
	} else if len(c.Targets) != c.Tenants {
		return fmt.Errorf("loadgen: %d targets for %d tenants", len(c.Targets), c.Tenants)
	}
	if c.Rate < 1 {
		return fmt.Errorf("loadgen: rate must be at least 1, got %d", c.Rate)
	}
	if c.Requests < 1 {
		return fmt.Errorf("loadgen: requests must be at least 1, got %d", c.Requests)
	}
	if c.Responses > c.Requests {
		return fmt.Errorf("loadgen: responses %d exceed requests %d per worker", c.Responses, c.Requests)
	}
	if c.ClientBasePort < -1 || c.ClientBasePort > 65535 {
		return fmt.Errorf("loadgen: client_base_port %d out of range", c.ClientBasePort)
	}
	if c.IdleTimeoutSeconds < 0 {
		return fmt.Errorf("loadgen: idle_timeout_seconds must not be negative")
	}
	return nil
}
