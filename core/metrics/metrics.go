package metrics

import "github.com/ankit-iitb/sandstorm-simulator/core/report"

// DispatchStats is a snapshot of the driver's cumulative counters, taken
// periodically while a run is in flight.
type DispatchStats struct {
	RunID      string
	Policy     string
	Submitted  uint64
	Dispatched uint64
	Requeued   uint64
	Completed  uint64
	Backlog    int
	At         uint64
}

// MetricsSink records dispatch statistics for observability purposes.
type MetricsSink interface {
	RecordDispatchStats(st DispatchStats) error
}

// Completion is one finished request: how long it waited end to end and
// how much work it declared.
type Completion struct {
	Tenant  uint16
	Sojourn uint64
	Cost    float64
}

// CompletionRecorder is implemented by sinks able to record per-request
// completions. The batch slice is reused by the caller and is only valid
// for the duration of the call.
type CompletionRecorder interface {
	RecordCompletions(batch []Completion) error
}

// ReportRecorder is implemented by sinks able to persist final run
// reports.
type ReportRecorder interface {
	RecordReport(r report.Report) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispatchStats(DispatchStats) error { return nil }
func (NopSink) RecordCompletions([]Completion) error    { return nil }
func (NopSink) RecordReport(report.Report) error        { return nil }
