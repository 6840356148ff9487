// Package events defines the run lifecycle events emitted on the event
// bus.
//
// Available event types:
//   - RunStarted: a run began (driver online or harness launched)
//   - StatsSnapshot: periodic dispatch counters from the driver
//   - RunCompleted: final report for a finished run
package events

import "github.com/ankit-iitb/sandstorm-simulator/core/report"

// RunStarted is published once when a run begins.
type RunStarted struct {
	RunID  string
	Policy string
	At     uint64
}

// StatsSnapshot carries the driver's cumulative counters at snapshot
// time. Backlog is the policy's queue depth at the instant of capture.
type StatsSnapshot struct {
	RunID      string
	Policy     string
	Submitted  uint64
	Dispatched uint64
	Requeued   uint64
	Completed  uint64
	Backlog    int
	At         uint64
}

// RunCompleted is published once with the finished run's report.
type RunCompleted struct {
	Report report.Report
}
