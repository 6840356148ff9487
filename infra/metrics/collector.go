package metrics

import (
	"context"

	"github.com/ankit-iitb/sandstorm-simulator/core/events"
	coremetrics "github.com/ankit-iitb/sandstorm-simulator/core/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/internal/eventbus"
)

// collectorBuffer bounds how far a slow sink may lag before snapshots
// are dropped by the bus.
const collectorBuffer = 64

// StartEventCollector subscribes to the event bus and feeds run events
// into the sink: stats snapshots into RecordDispatchStats and finished
// runs into RecordReport when the sink can persist reports. It stops
// when the context is canceled or the bus closes; events already
// buffered at close time are still delivered. The returned channel is
// closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub, cancel := bus.Subscribe(collectorBuffer)
	go func() {
		defer close(done)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.StatsSnapshot:
					_ = sink.RecordDispatchStats(coremetrics.DispatchStats{
						RunID:      e.RunID,
						Policy:     e.Policy,
						Submitted:  e.Submitted,
						Dispatched: e.Dispatched,
						Requeued:   e.Requeued,
						Completed:  e.Completed,
						Backlog:    e.Backlog,
						At:         e.At,
					})
				case events.RunCompleted:
					if r, ok := sink.(coremetrics.ReportRecorder); ok {
						_ = r.RecordReport(e.Report)
					}
				}
			}
		}
	}()
	return done
}
