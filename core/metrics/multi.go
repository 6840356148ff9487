package metrics

import "github.com/ankit-iitb/sandstorm-simulator/core/report"

// MultiSink fans records out to multiple sinks. Optional capabilities
// are forwarded only to the sinks that implement them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatchStats forwards the snapshot to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordDispatchStats(st DispatchStats) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatchStats(st); err != nil {
			return err
		}
	}
	return nil
}

// RecordCompletions forwards completions to capable sinks.
func (m *MultiSink) RecordCompletions(batch []Completion) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CompletionRecorder); ok {
			if err := rec.RecordCompletions(batch); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordReport forwards the final report to capable sinks.
func (m *MultiSink) RecordReport(r report.Report) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ReportRecorder); ok {
			if err := rec.RecordReport(r); err != nil {
				return err
			}
		}
	}
	return nil
}
