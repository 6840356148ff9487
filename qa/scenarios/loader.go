// Package scenarios runs yaml-defined dispatch scenarios through the
// simulator and checks their outcomes. The virtual clock makes results
// exact, so scenario expectations can pin counters and latency bounds
// without tolerance fudging.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ankit-iitb/sandstorm-simulator/core/dispatch"
	"github.com/ankit-iitb/sandstorm-simulator/core/workload"
)

// WorkloadDef is the yaml shape of a workload section.
type WorkloadDef struct {
	Model        string  `yaml:"model"`
	MeanMicros   float64 `yaml:"mean_us"`
	MinMicros    float64 `yaml:"min_us"`
	MaxMicros    float64 `yaml:"max_us"`
	ShortMicros  float64 `yaml:"short_us"`
	LongMicros   float64 `yaml:"long_us"`
	LongFraction float64 `yaml:"long_fraction"`
	Tenants      uint16  `yaml:"tenants"`
	Seed         uint64  `yaml:"seed"`
}

func (w WorkloadDef) ToConfig() workload.Config {
	return workload.Config{
		Model:        w.Model,
		MeanMicros:   w.MeanMicros,
		MinMicros:    w.MinMicros,
		MaxMicros:    w.MaxMicros,
		ShortMicros:  w.ShortMicros,
		LongMicros:   w.LongMicros,
		LongFraction: w.LongFraction,
		Tenants:      w.Tenants,
		Seed:         w.Seed,
	}
}

// DispatchDef is the yaml shape of a dispatch section.
type DispatchDef struct {
	Policy        string  `yaml:"policy"`
	QuantumMicros float64 `yaml:"quantum_us"`
}

func (d DispatchDef) ToConfig() dispatch.Config {
	return dispatch.Config{
		Policy:        d.Policy,
		QuantumMicros: d.QuantumMicros,
	}
}

// Expected pins the run outcome. Completed is always checked; Requeued
// only when present; the latency bounds only when positive.
type Expected struct {
	Completed       uint64  `yaml:"completed"`
	Requeued        *uint64 `yaml:"requeued,omitempty"`
	MaxMedianMicros float64 `yaml:"max_median_us,omitempty"`
	MaxP99Micros    float64 `yaml:"max_p99_us,omitempty"`
}

// Scenario is one yaml-defined simulation run with expectations.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Workload    WorkloadDef `yaml:"workload"`
	Dispatch    DispatchDef `yaml:"dispatch"`
	Requests    uint64      `yaml:"requests"`
	Rate        uint64      `yaml:"rate"`
	Expected    Expected    `yaml:"expected"`
}

// Load reads and parses one scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
