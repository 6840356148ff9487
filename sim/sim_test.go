package sim

import (
	"context"
	"testing"

	"github.com/ankit-iitb/sandstorm-simulator/core/dispatch"
	"github.com/ankit-iitb/sandstorm-simulator/core/events"
	"github.com/ankit-iitb/sandstorm-simulator/core/sched"
	"github.com/ankit-iitb/sandstorm-simulator/core/workload"
	"github.com/ankit-iitb/sandstorm-simulator/internal/eventbus"
)

// At 100k req/s every arrival is 10us apart; a 5us fixed cost finishes
// before the next arrival, so every request sees exactly its own cost.
func TestSimNoQueueing(t *testing.T) {
	cfg := Config{
		Requests: 100,
		Rate:     100_000,
		Workload: workload.Config{Model: workload.ModelFixed, MeanMicros: 5, Tenants: 4},
		Dispatch: dispatch.Config{Policy: sched.NameTwoTier},
	}

	rep, sum, err := Run(context.Background(), cfg, Deps{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Completed != 100 || rep.Received != 100 {
		t.Fatalf("completed=%d received=%d, want 100/100", sum.Completed, rep.Received)
	}
	if sum.Requeued != 0 {
		t.Fatalf("requeued=%d, want 0 without a quantum", sum.Requeued)
	}
	// Last arrival at 990us plus 5us of service.
	if sum.Started != 0 || sum.Ended != 995_000 {
		t.Fatalf("clock ran [%d, %d], want [0, 995000]", sum.Started, sum.Ended)
	}
	if rep.DurationSeconds != 995e-6 {
		t.Fatalf("duration=%v, want 995e-6", rep.DurationSeconds)
	}
	if rep.LatencySamples != 100 {
		t.Fatalf("samples=%d, want 100", rep.LatencySamples)
	}
	if rep.MedianMicros != 5 || rep.P99Micros != 5 {
		t.Fatalf("median=%v p99=%v, want 5/5", rep.MedianMicros, rep.P99Micros)
	}
	if rep.Mode != Mode || rep.Policy != sched.NameTwoTier {
		t.Fatalf("report stamped %s/%s", rep.Mode, rep.Policy)
	}
}

// A 20us cost at a 10us inter-arrival gap overloads the server; request i
// waits behind all earlier ones, so its sojourn is 20+10i us.
func TestSimOverloadLatencyGrowth(t *testing.T) {
	cfg := Config{
		Requests: 100,
		Rate:     100_000,
		Workload: workload.Config{Model: workload.ModelFixed, MeanMicros: 20},
		Dispatch: dispatch.Config{Policy: sched.NameFCFS},
	}

	rep, sum, err := Run(context.Background(), cfg, Deps{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Completed != 100 {
		t.Fatalf("completed=%d, want 100", sum.Completed)
	}
	// Back-to-back service: 100 requests x 20us.
	if sum.Ended != 2_000_000 {
		t.Fatalf("clock ended at %d, want 2000000", sum.Ended)
	}
	if rep.MedianMicros != 510 {
		t.Fatalf("median=%v, want 510", rep.MedianMicros)
	}
	if rep.P99Micros != 1000 {
		t.Fatalf("p99=%v, want 1000", rep.P99Micros)
	}
}

// Preemption spreads a long request across quanta but completion figures
// must match the run-to-completion case.
func TestSimQuantumPreemption(t *testing.T) {
	cfg := Config{
		Requests: 10,
		Rate:     100_000,
		Workload: workload.Config{Model: workload.ModelFixed, MeanMicros: 20},
		Dispatch: dispatch.Config{Policy: sched.NameTwoTier, QuantumMicros: 5},
	}

	rep, sum, err := Run(context.Background(), cfg, Deps{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Completed != 10 || rep.Received != 10 {
		t.Fatalf("completed=%d received=%d, want 10/10", sum.Completed, rep.Received)
	}
	if sum.Requeued == 0 {
		t.Fatal("expected requeues with a 5us quantum on 20us requests")
	}
	// Work conservation: total service is 200us regardless of slicing.
	if sum.Ended != 200_000 {
		t.Fatalf("clock ended at %d, want 200000", sum.Ended)
	}
}

func TestSimPublishesRunCompleted(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub, cancel := bus.Subscribe(16)
	defer cancel()

	cfg := Config{
		Requests: 5,
		Rate:     100_000,
		Workload: workload.Config{Model: workload.ModelFixed, MeanMicros: 1},
		Dispatch: dispatch.Config{Policy: sched.NameSJF},
	}
	rep, _, err := Run(context.Background(), cfg, Deps{Bus: bus})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var started, completed bool
	for !completed {
		select {
		case e := <-sub:
			switch ev := e.(type) {
			case events.RunStarted:
				if ev.RunID != rep.RunID {
					t.Fatalf("RunStarted for run %s, want %s", ev.RunID, rep.RunID)
				}
				started = true
			case events.RunCompleted:
				if ev.Report.RunID != rep.RunID || ev.Report.Received != 5 {
					t.Fatalf("RunCompleted carried %+v", ev.Report)
				}
				completed = true
			}
		default:
			t.Fatal("bus never delivered RunCompleted")
		}
	}
	if !started {
		t.Fatal("bus never delivered RunStarted")
	}
}

func TestSimRejectsBadConfig(t *testing.T) {
	cases := []Config{
		{Dispatch: dispatch.Config{Policy: "lifo"}},
		{Workload: workload.Config{Model: "zipf"}},
		{Dispatch: dispatch.Config{Policy: sched.NameFCFS, QuantumMicros: -1}},
	}
	for i, cfg := range cases {
		if _, _, err := Run(context.Background(), cfg, Deps{}); err == nil {
			t.Fatalf("case %d: config accepted, want error", i)
		}
	}
}

func TestSimConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.Requests != 1_000_000 || cfg.Rate != 100_000 {
		t.Fatalf("defaults: requests=%d rate=%d", cfg.Requests, cfg.Rate)
	}
	if cfg.Dispatch.Policy != sched.NameTwoTier {
		t.Fatalf("default policy %q", cfg.Dispatch.Policy)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
