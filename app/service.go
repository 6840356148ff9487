// Package app wires configuration, sinks, telemetry and history into a
// runnable service and exposes one entry point per mode: Serve binds
// the UDP server and dispatch driver, Simulate replays a synthetic
// arrival stream on the virtual clock, Loadgen fires the harness at a
// remote target. All three leave their final report on the event bus
// so the bus-side sinks persist it before Close returns.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ankit-iitb/sandstorm-simulator/api/runs"
	"github.com/ankit-iitb/sandstorm-simulator/config"
	"github.com/ankit-iitb/sandstorm-simulator/core/dispatch"
	"github.com/ankit-iitb/sandstorm-simulator/core/events"
	coremetrics "github.com/ankit-iitb/sandstorm-simulator/core/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/infra/history"
	"github.com/ankit-iitb/sandstorm-simulator/infra/logger"
	"github.com/ankit-iitb/sandstorm-simulator/infra/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/infra/telemetry"
	"github.com/ankit-iitb/sandstorm-simulator/internal/eventbus"
	"github.com/ankit-iitb/sandstorm-simulator/loadgen"
	"github.com/ankit-iitb/sandstorm-simulator/server"
	"github.com/ankit-iitb/sandstorm-simulator/sim"
)

// drainGrace bounds how long a cancelled serve run may keep working off
// its backlog before the driver is cut off.
const drainGrace = 5 * time.Second

// Service holds the wired components shared by every mode.
type Service struct {
	cfg  *config.Config
	log  logger.Logger
	bus  *eventbus.Bus
	sink coremetrics.MetricsSink

	telemetry     *telemetry.Publisher
	store         *history.Store
	collectorDone <-chan struct{}
}

// New creates a Service from the configuration. The direct sink (from
// metrics.sinks) is handed to the driver for high-rate counters and
// completions; telemetry and history subscribe to the event bus and
// only ever see snapshots and final reports.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("service")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	svc := &Service{cfg: cfg, log: log, bus: eventbus.New(), sink: sink}

	var busSinks []coremetrics.MetricsSink
	if cfg.Telemetry.Enabled {
		pub, err := telemetry.NewPublisher(cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		svc.telemetry = pub
		busSinks = append(busSinks, pub)
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		svc.store = store
		busSinks = append(busSinks, store)
	}
	var busSink coremetrics.MetricsSink
	if len(busSinks) == 1 {
		busSink = busSinks[0]
	} else if len(busSinks) > 1 {
		busSink = coremetrics.NewMultiSink(busSinks...)
	}
	// The collector lives until the bus closes, not until a mode's
	// context ends, so events buffered at shutdown still land.
	svc.collectorDone = metrics.StartEventCollector(context.Background(), svc.bus, busSink)
	return svc, nil
}

// Serve runs the UDP server and dispatch driver until ctx is cancelled,
// drains the accepted backlog and returns the run report.
func (s *Service) Serve(ctx context.Context) (report.Report, error) {
	rep := report.New("serve", s.cfg.Dispatch.Policy)
	sampler := report.NewSampler(0)

	srv, err := server.New(s.cfg.Server, s.cfg.Workload, s.cfg.Dispatch.ChannelDepth, s.log)
	if err != nil {
		return report.Report{}, err
	}
	defer srv.Close()

	drv, err := dispatch.New(s.cfg.Dispatch, dispatch.Deps{
		Logger:     s.log,
		Sink:       s.sink,
		Bus:        s.bus,
		OnComplete: srv.Respond,
		Sampler:    sampler,
		RunID:      rep.RunID,
	})
	if err != nil {
		return report.Report{}, err
	}

	s.startProm(ctx)
	s.startAPI(ctx)
	srv.Start(ctx)

	// Cancelling ctx closes the server, which closes the arrival
	// channel; the driver then finishes what it already accepted. If
	// the drain outlives the grace period the driver is cancelled too.
	driverCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	drained := make(chan struct{})
	go func() {
		<-ctx.Done()
		srv.Close()
		select {
		case <-drained:
		case <-time.After(drainGrace):
			s.log.Warnf("drain exceeded %s, cancelling driver", drainGrace)
			cancel()
		}
	}()

	sum := drv.Run(driverCtx, srv.Arrivals())
	close(drained)

	rep.Finish(sum.Submitted, sum.Completed, sum.ElapsedSeconds(), sampler)
	s.recordReport(rep)
	s.bus.Publish(events.RunCompleted{Report: rep})
	return rep, nil
}

// Simulate runs the discrete-event simulator with the shared workload
// and dispatch sections.
func (s *Service) Simulate(ctx context.Context) (report.Report, error) {
	s.startProm(ctx)
	rep, _, err := sim.Run(ctx, sim.Config{
		Requests: s.cfg.Sim.Requests,
		Rate:     s.cfg.Sim.Rate,
		Workload: s.cfg.Workload,
		Dispatch: s.cfg.Dispatch,
	}, sim.Deps{Logger: s.log, Sink: s.sink, Bus: s.bus})
	if err != nil {
		return report.Report{}, err
	}
	// sim.Run already published RunCompleted on the bus.
	s.recordReport(rep)
	return rep, nil
}

// Loadgen fires the load harness at the configured targets and returns
// its report.
func (s *Service) Loadgen(ctx context.Context) (report.Report, error) {
	h, err := loadgen.New(s.cfg.Loadgen, s.log)
	if err != nil {
		return report.Report{}, err
	}
	defer h.Close()

	s.startProm(ctx)
	rep := h.Run(ctx)
	s.recordReport(rep)
	s.bus.Publish(events.RunCompleted{Report: rep})
	return rep, nil
}

// recordReport hands the final report to the direct sink. Bus-side
// sinks receive it through the RunCompleted event instead.
func (s *Service) recordReport(rep report.Report) {
	if rec, ok := s.sink.(coremetrics.ReportRecorder); ok {
		if err := rec.RecordReport(rep); err != nil {
			s.log.Warnf("record report: %v", err)
		}
	}
}

func (s *Service) startProm(ctx context.Context) {
	addr := s.cfg.Metrics.PrometheusAddr
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr, s.log); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// startAPI exposes the run history over HTTP while a serve run is up.
// Validation ties api.addr to history.enabled, so the store is present.
func (s *Service) startAPI(ctx context.Context) {
	addr := s.cfg.API.Addr
	if addr == "" {
		return
	}
	go func() {
		if err := runs.StartServer(ctx, addr, s.store, s.log); err != nil {
			s.log.Errorf("api server: %v", err)
		}
	}()
}

// Close shuts the event bus, waits for the collector to flush the
// bus-side sinks and releases them.
func (s *Service) Close() error {
	s.bus.Close()
	if s.collectorDone != nil {
		<-s.collectorDone
	}
	if s.telemetry != nil {
		s.telemetry.Close()
	}
	var err error
	if s.store != nil {
		err = s.store.Close()
	}
	return err
}
