package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	data := `server:
  listen_ip: "127.0.0.1"
  base_port: 7000
  tenants: 4
dispatch:
  policy: "sjf"
  quantum_us: 5
  stats_every_seconds: 2
workload:
  model: "exponential"
  mean_us: 25
  tenants: 4
  seed: 7
loadgen:
  server_ip: "10.0.0.2"
  rate: 250000
  placement:
    workers: 4
    master_index: 1
    cores: [0, 1, 2, 3]
sim:
  requests: 500
  rate: 50000
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
telemetry:
  enabled: true
  broker: "tcp://localhost:1883"
history:
  enabled: true
  path: "runs.db"
api:
  addr: ":8080"
`
	cfg, err := Load(writeConfig(t, "config.yaml", data))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.listen_ip", cfg.Server.ListenIP, "127.0.0.1"},
		{"server.base_port", cfg.Server.BasePort, 7000},
		{"server.tenants", cfg.Server.Tenants, 4},
		{"dispatch.policy", cfg.Dispatch.Policy, "sjf"},
		{"dispatch.quantum_us", cfg.Dispatch.QuantumMicros, 5.0},
		{"workload.model", cfg.Workload.Model, "exponential"},
		{"workload.mean_us", cfg.Workload.MeanMicros, 25.0},
		{"workload.seed", cfg.Workload.Seed, uint64(7)},
		{"loadgen.server_ip", cfg.Loadgen.ServerIP, "10.0.0.2"},
		{"loadgen.rate", cfg.Loadgen.Rate, uint64(250000)},
		{"loadgen.workers", cfg.Loadgen.Placement.Workers, 4},
		{"loadgen.master_index", cfg.Loadgen.Placement.MasterIndex, 1},
		{"sim.requests", cfg.Sim.Requests, uint64(500)},
		{"sim.rate", cfg.Sim.Rate, uint64(50000)},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics.sinks", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"telemetry.broker", cfg.Telemetry.Broker, "tcp://localhost:1883"},
		{"history.path", cfg.History.Path, "runs.db"},
		{"api.addr", cfg.API.Addr, ":8080"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	if len(cfg.Loadgen.Placement.Cores) != 4 || cfg.Loadgen.Placement.Cores[3] != 3 {
		t.Errorf("cores mismatch: %v", cfg.Loadgen.Placement.Cores)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", "workload:\n  seed: 3\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Dispatch.Policy != "two-tier" {
		t.Errorf("default policy = %q", cfg.Dispatch.Policy)
	}
	if cfg.Server.BasePort != 1024 || cfg.Server.Tenants != 8 {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
	if cfg.Workload.Model != "fixed" || cfg.Workload.Seed != 3 {
		t.Errorf("workload = %+v", cfg.Workload)
	}
	if cfg.Telemetry.TopicPrefix != "sandstorm" {
		t.Errorf("telemetry prefix = %q", cfg.Telemetry.TopicPrefix)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SB_SERVER__BASE_PORT", "9000")
	t.Setenv("SB_DISPATCH__POLICY", "fcfs")
	cfg, err := Load(writeConfig(t, "config.yaml", "server:\n  base_port: 7000\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.BasePort != 9000 {
		t.Errorf("env override lost: base_port = %d", cfg.Server.BasePort)
	}
	if cfg.Dispatch.Policy != "fcfs" {
		t.Errorf("env override lost: policy = %q", cfg.Dispatch.Policy)
	}
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{"sim": {"requests": 9}}`))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Sim.Requests != 9 {
		t.Errorf("sim.requests = %d", cfg.Sim.Requests)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.toml", "x = 1")); err == nil {
		t.Error("unsupported extension accepted")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
	if _, err := Load(writeConfig(t, "config.yaml", "dispatch:\n  policy: \"lifo\"\n")); err == nil {
		t.Error("unknown policy accepted")
	}
	if _, err := Load(writeConfig(t, "config.yaml", "telemetry:\n  enabled: true\n")); err == nil {
		t.Error("enabled telemetry without broker accepted")
	}
	if _, err := Load(writeConfig(t, "config.yaml", "api:\n  addr: \":8080\"\n")); err == nil {
		t.Error("api without history accepted")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
