// Package metrics defines the sink interfaces the dispatch driver and
// run harnesses record into. The base MetricsSink takes periodic counter
// snapshots; CompletionRecorder and ReportRecorder are optional
// capabilities a sink may additionally implement. Concrete sinks live in
// infra/metrics and register themselves with RegisterMetricsSink; the
// factory helpers return a MultiSink automatically when more than one
// sink is configured.
package metrics
