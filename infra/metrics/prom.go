package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/ankit-iitb/sandstorm-simulator/core/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/internal/cycles"
)

// PromSink exposes dispatch counters, queue depth, and per-request
// sojourn times as Prometheus metrics.
type PromSink struct {
	events     *prometheus.CounterVec
	backlog    *prometheus.GaugeVec
	sojourn    *prometheus.HistogramVec
	runLatency *prometheus.GaugeVec
	runRate    *prometheus.GaugeVec

	// The driver reports cumulative counters; deltas against the last
	// snapshot feed the Prometheus counters.
	mu      sync.Mutex
	lastRun string
	last    coremetrics.DispatchStats
}

// NewPromSink registers dispatch metrics on the default Prometheus
// registerer. The Prometheus server is started separately with
// StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_requests_total",
		Help: "Requests by dispatch event",
	}, []string{"policy", "event"})
	backlog := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dispatch_backlog_requests",
		Help: "Requests queued in the scheduling policy",
	}, []string{"policy"})
	sojourn := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "request_sojourn_seconds",
		Help:    "Time between request arrival and completion",
		Buckets: prometheus.ExponentialBuckets(1e-6, 2, 20),
	}, []string{"tenant"})
	runLatency := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_latency_us",
		Help: "Latency quantiles of the last finished run",
	}, []string{"mode", "policy", "quantile"})
	runRate := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_throughput_rps",
		Help: "Throughput of the last finished run",
	}, []string{"mode", "policy"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(backlog); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			backlog = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(sojourn); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sojourn = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(runLatency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runLatency = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(runRate); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runRate = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		events:     events,
		backlog:    backlog,
		sojourn:    sojourn,
		runLatency: runLatency,
		runRate:    runRate,
	}, nil
}

// RecordDispatchStats advances the counters by the delta since the last
// snapshot of the same run and sets the backlog gauge.
func (s *PromSink) RecordDispatchStats(st coremetrics.DispatchStats) error {
	s.mu.Lock()
	prev := s.last
	if st.RunID != s.lastRun {
		prev = coremetrics.DispatchStats{}
		s.lastRun = st.RunID
	}
	s.last = st
	s.mu.Unlock()

	s.events.WithLabelValues(st.Policy, "submitted").Add(float64(st.Submitted - prev.Submitted))
	s.events.WithLabelValues(st.Policy, "dispatched").Add(float64(st.Dispatched - prev.Dispatched))
	s.events.WithLabelValues(st.Policy, "requeued").Add(float64(st.Requeued - prev.Requeued))
	s.events.WithLabelValues(st.Policy, "completed").Add(float64(st.Completed - prev.Completed))
	s.backlog.WithLabelValues(st.Policy).Set(float64(st.Backlog))
	return nil
}

// RecordCompletions observes each completion's sojourn time.
func (s *PromSink) RecordCompletions(batch []coremetrics.Completion) error {
	for _, c := range batch {
		s.sojourn.WithLabelValues(strconv.Itoa(int(c.Tenant))).Observe(cycles.ToSeconds(c.Sojourn))
	}
	return nil
}

// RecordReport publishes the finished run's summary figures.
func (s *PromSink) RecordReport(r report.Report) error {
	s.runLatency.WithLabelValues(r.Mode, r.Policy, "median").Set(r.MedianMicros)
	s.runLatency.WithLabelValues(r.Mode, r.Policy, "p99").Set(r.P99Micros)
	s.runRate.WithLabelValues(r.Mode, r.Policy).Set(r.ThroughputRPS)
	return nil
}
