package metrics_test

import (
	"testing"

	"github.com/ankit-iitb/sandstorm-simulator/core/factory"
	"github.com/ankit-iitb/sandstorm-simulator/core/metrics"
)

type fakeSink struct{ name string }

func (fakeSink) RecordDispatchStats(metrics.DispatchStats) error { return nil }

func register(t *testing.T, name string) {
	t.Helper()
	err := metrics.RegisterMetricsSink(name, func(map[string]any) (metrics.MetricsSink, error) {
		return fakeSink{name: name}, nil
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
}

func TestNewMetricsSink(t *testing.T) {
	register(t, "fake-a")
	register(t, "fake-b")

	// No configs yields a NopSink.
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	// A single config returns the sink directly.
	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "fake-a"}})
	if err != nil {
		t.Fatalf("single: %v", err)
	}
	if fs, ok := s.(fakeSink); !ok || fs.name != "fake-a" {
		t.Fatalf("expected fake-a, got %#v", s)
	}

	// Multiple configs return a MultiSink.
	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "fake-a"}, {Type: "fake-b"}})
	if err != nil {
		t.Fatalf("multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sub-sinks, got %d", len(m.Sinks))
	}
}

func TestNewMetricsSinkUnknownType(t *testing.T) {
	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "bogus"}}); err == nil {
		t.Fatal("expected error for unknown sink type")
	}
}
