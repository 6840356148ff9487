// Package config loads the process configuration from a yaml or json
// file with SB_-prefixed environment overrides. Each component owns its
// section type; this package only aggregates, defaults, and validates
// them.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ankit-iitb/sandstorm-simulator/api/runs"
	"github.com/ankit-iitb/sandstorm-simulator/core/dispatch"
	"github.com/ankit-iitb/sandstorm-simulator/core/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/core/workload"
	"github.com/ankit-iitb/sandstorm-simulator/infra/history"
	"github.com/ankit-iitb/sandstorm-simulator/infra/telemetry"
	"github.com/ankit-iitb/sandstorm-simulator/loadgen"
	"github.com/ankit-iitb/sandstorm-simulator/server"
)

// SimConfig sizes a simulation run. Workload and dispatch settings come
// from the shared sections, so a simulated run exercises exactly the
// configuration a served run would.
type SimConfig struct {
	Requests uint64 `json:"requests"`
	Rate     uint64 `json:"rate"`
}

// SetDefaults applies fallback values for optional fields.
func (c *SimConfig) SetDefaults() {
	if c.Requests == 0 {
		c.Requests = 1_000_000
	}
	if c.Rate == 0 {
		c.Rate = 100_000
	}
}

// Config aggregates every component's configuration section.
type Config struct {
	Server    server.Config    `json:"server"`
	Dispatch  dispatch.Config  `json:"dispatch"`
	Workload  workload.Config  `json:"workload"`
	Loadgen   loadgen.Config   `json:"loadgen"`
	Sim       SimConfig        `json:"sim"`
	Metrics   metrics.Config   `json:"metrics"`
	Telemetry telemetry.Config `json:"telemetry"`
	History   history.Config   `json:"history"`
	API       runs.Config      `json:"api"`
}

// Default returns a configuration with every section at its defaults.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

// Load reads the configuration file at path, applies SB_ environment
// overrides (SB_SERVER__BASE_PORT=9000 sets server.base_port), fills
// defaults, and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnv(k *koanf.Koanf) error {
	return k.Load(env.Provider("SB_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sb_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
}

func (c *Config) setDefaults() {
	c.Server.SetDefaults()
	c.Dispatch.SetDefaults()
	c.Workload.SetDefaults()
	c.Loadgen.SetDefaults()
	c.Sim.SetDefaults()
	c.Metrics.SetDefaults()
	c.Telemetry.SetDefaults()
	c.History.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Dispatch.Validate(); err != nil {
		return err
	}
	if err := c.Workload.Validate(); err != nil {
		return err
	}
	if err := c.Loadgen.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if c.API.Addr != "" && !c.History.Enabled {
		return fmt.Errorf("api.addr requires history.enabled")
	}
	return c.API.Validate()
}
