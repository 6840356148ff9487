package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/ankit-iitb/sandstorm-simulator/core/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/infra/logger"
	"github.com/ankit-iitb/sandstorm-simulator/internal/cycles"
)

// InfluxSink writes dispatch statistics, per-request completions, and
// run reports to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing database never stops
// a run.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordDispatchStats writes one snapshot of the driver's counters.
func (s *InfluxSink) RecordDispatchStats(st coremetrics.DispatchStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatch_stats").
		AddTag("run_id", st.RunID).
		AddTag("policy", st.Policy).
		AddField("submitted", int64(st.Submitted)).
		AddField("dispatched", int64(st.Dispatched)).
		AddField("requeued", int64(st.Requeued)).
		AddField("completed", int64(st.Completed)).
		AddField("backlog", int64(st.Backlog)).
		AddField("clock_cycles", int64(st.At)).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCompletions writes one point per finished request.
func (s *InfluxSink) RecordCompletions(batch []coremetrics.Completion) error {
	if len(batch) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pts := make([]*write.Point, 0, len(batch))
	// Points on the same series must carry distinct timestamps or the
	// database keeps only the last one.
	now := time.Now()
	for i, c := range batch {
		pts = append(pts, write.NewPointWithMeasurement("request_completion").
			AddTag("tenant", strconv.Itoa(int(c.Tenant))).
			AddField("sojourn_us", round3(cycles.ToMicros(c.Sojourn))).
			AddField("cost_us", round3(c.Cost)).
			SetTime(now.Add(time.Duration(i))))
	}
	return s.writeAPI.WritePoint(ctx, pts...)
}

// RecordReport persists the final figures of a run.
func (s *InfluxSink) RecordReport(r report.Report) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run_report").
		AddTag("run_id", r.RunID).
		AddTag("mode", r.Mode)
	if r.Policy != "" {
		p = p.AddTag("policy", r.Policy)
	}
	p = p.AddField("duration_s", round3(r.DurationSeconds)).
		AddField("sent", int64(r.Sent)).
		AddField("received", int64(r.Received)).
		AddField("throughput_rps", round3(r.ThroughputRPS)).
		AddField("latency_samples", int64(r.LatencySamples)).
		AddField("median_us", round3(r.MedianMicros)).
		AddField("p99_us", round3(r.P99Micros)).
		SetTime(r.StartedAt)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
