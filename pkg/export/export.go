package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/ankit-iitb/sandstorm-simulator/core/report"
)

// WriteJSON writes the run reports to w in JSON format.
func WriteJSON(w io.Writer, reports []report.Report) error {
	enc := json.NewEncoder(w)
	return enc.Encode(reports)
}

// WriteCSV writes the run reports to w in CSV format, one row per run,
// with headers matching the history table columns.
func WriteCSV(w io.Writer, reports []report.Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"run_id", "mode", "policy", "started_at", "duration_s", "sent",
		"received", "throughput_rps", "latency_samples", "median_us", "p99_us",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range reports {
		rec := []string{
			r.RunID,
			r.Mode,
			r.Policy,
			r.StartedAt.Format(time.RFC3339),
			strconv.FormatFloat(r.DurationSeconds, 'f', -1, 64),
			strconv.FormatUint(r.Sent, 10),
			strconv.FormatUint(r.Received, 10),
			strconv.FormatFloat(r.ThroughputRPS, 'f', -1, 64),
			strconv.Itoa(r.LatencySamples),
			strconv.FormatFloat(r.MedianMicros, 'f', -1, 64),
			strconv.FormatFloat(r.P99Micros, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
