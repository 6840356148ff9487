// Package report aggregates latency observations and produces the final
// summary of a run. Latencies are recorded in clock cycles and reported
// in microseconds; medians and tail percentiles come from gonum's
// empirical quantile over the sorted samples.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/ankit-iitb/sandstorm-simulator/internal/cycles"
)

// Report is the JSON-marshalable outcome of one run, whichever mode
// produced it.
type Report struct {
	RunID           string    `json:"run_id"`
	Mode            string    `json:"mode"`
	Policy          string    `json:"policy,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	Sent            uint64    `json:"sent,omitempty"`
	Received        uint64    `json:"received"`
	ThroughputRPS   float64   `json:"throughput_rps"`
	LatencySamples  int       `json:"latency_samples"`
	MedianMicros    float64   `json:"median_us"`
	P99Micros       float64   `json:"p99_us"`
}

// New starts a report for a run of the given mode and policy, stamping a
// fresh run ID.
func New(mode, policy string) Report {
	return Report{
		RunID:     uuid.NewString(),
		Mode:      mode,
		Policy:    policy,
		StartedAt: time.Now().UTC(),
	}
}

// Finish fills in the end-of-run figures. lat may be nil or empty when
// the run recorded no latency samples.
func (r *Report) Finish(sent, received uint64, seconds float64, lat *Sampler) {
	r.Sent = sent
	r.Received = received
	r.DurationSeconds = seconds
	if seconds > 0 {
		r.ThroughputRPS = float64(received) / seconds
	}
	if lat != nil && lat.Len() > 0 {
		r.LatencySamples = lat.Len()
		r.MedianMicros, r.P99Micros = lat.Summary()
	}
}

// Sampler accumulates latency observations, one per sampled response.
// It is not safe for concurrent use; each worker that samples owns its
// own Sampler.
type Sampler struct {
	samples []float64
}

// NewSampler pre-allocates room for hint observations.
func NewSampler(hint int) *Sampler {
	if hint < 0 {
		hint = 0
	}
	return &Sampler{samples: make([]float64, 0, hint)}
}

// Record adds one latency observation in cycles.
func (s *Sampler) Record(latency uint64) {
	s.samples = append(s.samples, float64(latency))
}

// Len reports the number of recorded observations.
func (s *Sampler) Len() int { return len(s.samples) }

// Summary sorts the samples and returns the median and 99th percentile
// in microseconds. Both are zero when nothing was recorded.
func (s *Sampler) Summary() (medianMicros, p99Micros float64) {
	if len(s.samples) == 0 {
		return 0, 0
	}
	sort.Float64s(s.samples)
	median := stat.Quantile(0.5, stat.Empirical, s.samples, nil)
	p99 := stat.Quantile(0.99, stat.Empirical, s.samples, nil)
	perMicro := float64(cycles.PerSecond()) / 1e6
	return median / perMicro, p99 / perMicro
}
