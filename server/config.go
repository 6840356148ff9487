package server

import "fmt"

// Config defines the UDP listener settings.
type Config struct {
	// ListenIP is the address the tenant sockets bind to.
	ListenIP string `json:"listen_ip"`
	// BasePort is tenant 0's port; tenant t listens on BasePort+t.
	// -1 binds ephemeral ports, which tests use.
	BasePort int `json:"base_port"`
	// Tenants is the number of tenant sockets to open.
	Tenants int `json:"tenants"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.ListenIP == "" {
		c.ListenIP = "0.0.0.0"
	}
	if c.BasePort == 0 {
		c.BasePort = 1024
	}
	if c.Tenants == 0 {
		c.Tenants = 8
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.Tenants < 1 {
		return fmt.Errorf("server: tenants must be at least 1, got %d", c.Tenants)
	}
	if c.BasePort < -1 || c.BasePort > 65535 {
		return fmt.Errorf("server: base_port %d out of range", c.BasePort)
	}
	if c.BasePort > 0 && c.BasePort+c.Tenants-1 > 65535 {
		return fmt.Errorf("server: tenant ports %d..%d exceed 65535", c.BasePort, c.BasePort+c.Tenants-1)
	}
	return nil
}
