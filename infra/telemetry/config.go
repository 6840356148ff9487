package telemetry

import (
	"crypto/tls"
	"fmt"
)

// Config defines the connection parameters for the MQTT telemetry
// publisher.
type Config struct {
	Enabled       bool        `json:"enabled"`
	Broker        string      `json:"broker"`
	ClientID      string      `json:"client_id"`
	Username      string      `json:"username"`
	Password      string      `json:"password"`
	TopicPrefix   string      `json:"topic_prefix"`
	QoS           byte        `json:"qos"`
	RetainReports bool        `json:"retain_reports"`
	UseTLS        bool        `json:"use_tls"`
	ClientCert    string      `json:"client_cert"`
	ClientKey     string      `json:"client_key"`
	CABundle      string      `json:"ca_bundle"`
	MaxRetries    int         `json:"max_retries"`
	BackoffMS     int         `json:"backoff_ms"`
	TLSConfig     *tls.Config `json:"-"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "sandstorm-telemetry"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "sandstorm"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// Validate checks the configuration. A disabled publisher is always
// valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("telemetry: broker is required when enabled")
	}
	if c.QoS > 2 {
		return fmt.Errorf("telemetry: qos must be 0, 1 or 2, got %d", c.QoS)
	}
	return nil
}
