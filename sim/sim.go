// Package sim runs the dispatch loop against a synthetic arrival stream
// on a virtual clock. No sockets and no wall time are involved: arrivals
// are stamped with their scheduled instants, the executor advances in
// discrete steps, and the resulting latencies are exact for the chosen
// policy and workload.
package sim

import (
	"context"

	"github.com/ankit-iitb/sandstorm-simulator/core/dispatch"
	"github.com/ankit-iitb/sandstorm-simulator/core/events"
	"github.com/ankit-iitb/sandstorm-simulator/core/logger"
	"github.com/ankit-iitb/sandstorm-simulator/core/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/core/workload"
	"github.com/ankit-iitb/sandstorm-simulator/internal/cycles"
	"github.com/ankit-iitb/sandstorm-simulator/internal/eventbus"
)

// Mode is the report mode stamped on simulation runs.
const Mode = "simulate"

// Deps are the simulator's optional collaborators.
type Deps struct {
	Logger logger.Logger
	Sink   metrics.MetricsSink
	Bus    *eventbus.Bus
}

// Run simulates cfg.Requests arrivals at cfg.Rate through the configured
// policy and returns the run report alongside the driver's accounting.
// When a bus is wired, a RunCompleted event carrying the report is
// published before returning.
func Run(ctx context.Context, cfg Config, deps Deps) (report.Report, dispatch.Summary, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return report.Report{}, dispatch.Summary{}, err
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop{}
	}

	gen, err := workload.New(cfg.Workload, 0)
	if err != nil {
		return report.Report{}, dispatch.Summary{}, err
	}

	rep := report.New(Mode, cfg.Dispatch.Policy)
	exec := dispatch.NewVirtualExecutor(0)
	sampler := report.NewSampler(int(cfg.Requests))

	drv, err := dispatch.New(cfg.Dispatch, dispatch.Deps{
		Logger:   deps.Logger,
		Sink:     deps.Sink,
		Bus:      deps.Bus,
		Executor: exec,
		Sampler:  sampler,
		RunID:    rep.RunID,
	})
	if err != nil {
		return report.Report{}, dispatch.Summary{}, err
	}

	deps.Logger.Infof("simulating %d requests at %d req/s: policy=%s model=%s",
		cfg.Requests, cfg.Rate, cfg.Dispatch.Policy, gen.Model())

	arrivals := make(chan dispatch.Arrival, cfg.Dispatch.ChannelDepth)
	go produce(ctx, cfg, gen, arrivals)

	sum := drv.Run(ctx, arrivals)
	rep.Finish(sum.Submitted, sum.Completed, sum.ElapsedSeconds(), sampler)

	if deps.Bus != nil {
		deps.Bus.Publish(events.RunCompleted{Report: rep})
	}
	return rep, sum, nil
}

// produce stamps arrivals on the virtual timeline at a fixed rate and
// closes the channel once the quota is sent, letting the driver drain.
func produce(ctx context.Context, cfg Config, gen *workload.Generator, arrivals chan<- dispatch.Arrival) {
	defer close(arrivals)
	rateInv := float64(cycles.PerSecond()) / float64(cfg.Rate)
	for i := uint64(0); i < cfg.Requests; i++ {
		a := dispatch.Arrival{
			Tenant: gen.NextTenant(),
			Cost:   gen.NextCost(),
			At:     uint64(float64(i) * rateInv),
		}
		select {
		case arrivals <- a:
		case <-ctx.Done():
			return
		}
	}
}
