package history

import "fmt"

// Config selects where run history is kept.
type Config struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "sandstorm.db"
	}
}

// Validate checks the configuration. A disabled store is always valid.
func (c Config) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("history: path is required when enabled")
	}
	return nil
}
