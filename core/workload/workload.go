// Package workload generates per-request service demands and tenant
// assignments for the load harness and the closed-loop simulator. Costs
// are expressed in microseconds of service time. All draws come from a
// seeded PCG stream, so a (seed, stream) pair reproduces a run exactly.
package workload

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Cost model names accepted in Config.Model.
const (
	ModelFixed       = "fixed"
	ModelUniform     = "uniform"
	ModelExponential = "exponential"
	ModelBimodal     = "bimodal"
)

// Config selects and parameterizes a cost model.
type Config struct {
	// Model is one of fixed, uniform, exponential, bimodal.
	Model string `json:"model"`
	// MeanMicros is the fixed cost, or the mean for exponential.
	MeanMicros float64 `json:"mean_us"`
	// MinMicros/MaxMicros bound the uniform model.
	MinMicros float64 `json:"min_us"`
	MaxMicros float64 `json:"max_us"`
	// ShortMicros/LongMicros/LongFraction parameterize the bimodal mix
	// of short requests with an occasional long one.
	ShortMicros  float64 `json:"short_us"`
	LongMicros   float64 `json:"long_us"`
	LongFraction float64 `json:"long_fraction"`
	// Tenants is the number of tenants requests are spread over.
	Tenants uint16 `json:"tenants"`
	// Seed selects the random stream.
	Seed uint64 `json:"seed"`
}

func (c *Config) SetDefaults() {
	if c.Model == "" {
		c.Model = ModelFixed
	}
	if c.MeanMicros == 0 {
		c.MeanMicros = 10
	}
	if c.Tenants == 0 {
		c.Tenants = 1
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

func (c *Config) Validate() error {
	switch c.Model {
	case ModelFixed, ModelExponential:
		if c.MeanMicros <= 0 {
			return fmt.Errorf("workload: mean_us must be positive, got %v", c.MeanMicros)
		}
	case ModelUniform:
		if c.MinMicros < 0 || c.MaxMicros < c.MinMicros {
			return fmt.Errorf("workload: need 0 <= min_us <= max_us, got [%v, %v]", c.MinMicros, c.MaxMicros)
		}
	case ModelBimodal:
		if c.ShortMicros <= 0 || c.LongMicros < c.ShortMicros {
			return fmt.Errorf("workload: need 0 < short_us <= long_us, got [%v, %v]", c.ShortMicros, c.LongMicros)
		}
		if c.LongFraction < 0 || c.LongFraction > 1 {
			return fmt.Errorf("workload: long_fraction must be within [0, 1], got %v", c.LongFraction)
		}
	default:
		return fmt.Errorf("workload: unknown model %q", c.Model)
	}
	if c.Tenants == 0 {
		return fmt.Errorf("workload: tenants must be at least 1")
	}
	return nil
}

// Generator draws request costs and tenants. Not safe for concurrent
// use; give each worker its own Generator with a distinct stream.
type Generator struct {
	cfg  Config
	rng  *rand.Rand
	cost func() float64
}

// New builds a Generator for the given config. stream distinguishes
// concurrent workers sharing one seed, so their draws do not collide.
func New(cfg Config, stream uint64) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := rand.NewPCG(cfg.Seed, stream)
	g := &Generator{cfg: cfg, rng: rand.New(src)}

	switch cfg.Model {
	case ModelFixed:
		mean := cfg.MeanMicros
		g.cost = func() float64 { return mean }
	case ModelUniform:
		u := distuv.Uniform{Min: cfg.MinMicros, Max: cfg.MaxMicros, Src: src}
		g.cost = u.Rand
	case ModelExponential:
		e := distuv.Exponential{Rate: 1 / cfg.MeanMicros, Src: src}
		g.cost = e.Rand
	case ModelBimodal:
		short, long, frac := cfg.ShortMicros, cfg.LongMicros, cfg.LongFraction
		g.cost = func() float64 {
			if g.rng.Float64() < frac {
				return long
			}
			return short
		}
	}
	return g, nil
}

// NextCost draws the next request's service demand in microseconds.
func (g *Generator) NextCost() float64 { return g.cost() }

// NextTenant draws a uniform tenant in [0, Tenants).
func (g *Generator) NextTenant() uint16 {
	return uint16(g.rng.IntN(int(g.cfg.Tenants)))
}

// Model reports the configured cost model name.
func (g *Generator) Model() string { return g.cfg.Model }
