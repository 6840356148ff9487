package metrics

import "github.com/ankit-iitb/sandstorm-simulator/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	// Sinks lists the sinks to construct. Empty means NopSink.
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is where the scrape endpoint listens. Empty
	// disables the endpoint.
	PrometheusAddr string `json:"prometheus_addr"`
}

func (c *Config) SetDefaults() {}

func (c *Config) Validate() error { return nil }
