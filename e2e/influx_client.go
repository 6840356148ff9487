// Package e2e exercises the full pipeline against disposable InfluxDB
// and Mosquitto containers.
package e2e

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small helper around the official InfluxDB v2 client
// used by the e2e checks. It hides token/org/bucket plumbing and offers
// the one query shape the suite needs.
type InfluxClient struct {
	url    string
	org    string
	bucket string
	token  string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for the given parameters. It assumes
// the server is already running and onboarded.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		url:    url,
		org:    org,
		bucket: bucket,
		token:  token,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// RunReportIDs returns the distinct run_id tags of every run_report
// point written in the last hour.
func (c *InfluxClient) RunReportIDs(ctx context.Context) ([]string, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-1h) |> filter(fn: (r) => r._measurement == "run_report")`, c.bucket)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	seen := make(map[string]struct{})
	var ids []string
	for res.Next() {
		id, _ := res.Record().ValueByKey("run_id").(string)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, res.Err()
}

// CountMeasurement counts the rows of one measurement written in the
// last hour.
func (c *InfluxClient) CountMeasurement(ctx context.Context, measurement string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-1h) |> filter(fn: (r) => r._measurement == %q)`, c.bucket, measurement)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	count := 0
	for res.Next() {
		count++
	}
	return count, res.Err()
}

// WaitForRunReport polls until the given run's report shows up or the
// timeout passes.
func (c *InfluxClient) WaitForRunReport(ctx context.Context, runID string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		ids, err := c.RunReportIDs(ctx)
		lastErr = err
		for _, id := range ids {
			if id == runID {
				return nil
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr != nil {
		return fmt.Errorf("run %s not found: %w", runID, lastErr)
	}
	return fmt.Errorf("run %s not found in %s", runID, c.bucket)
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
