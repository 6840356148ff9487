// Package history persists finished run reports in a SQLite database,
// so policies and workloads can be compared across invocations.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	coremetrics "github.com/ankit-iitb/sandstorm-simulator/core/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
)

// ErrNotFound is returned when no run with the requested ID exists.
var ErrNotFound = errors.New("history: run not found")

// schema contains the DDL for the history tables. Each statement uses
// IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id          TEXT PRIMARY KEY,
		mode            TEXT NOT NULL,
		policy          TEXT NOT NULL DEFAULT '',
		started_at      TEXT NOT NULL,
		duration_s      REAL NOT NULL,
		sent            INTEGER NOT NULL,
		received        INTEGER NOT NULL,
		throughput_rps  REAL NOT NULL,
		latency_samples INTEGER NOT NULL,
		median_us       REAL NOT NULL,
		p99_us          REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode)`,
}

// Store keeps run reports in SQLite. Use ":memory:" as the path for an
// in-memory database in tests.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// WAL keeps concurrent readers cheap while a run is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// RecordReport inserts or replaces the report for a run.
func (s *Store) RecordReport(r report.Report) error {
	_, err := s.db.Exec(`INSERT INTO runs
		(run_id, mode, policy, started_at, duration_s, sent, received,
		 throughput_rps, latency_samples, median_us, p99_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			mode            = excluded.mode,
			policy          = excluded.policy,
			started_at      = excluded.started_at,
			duration_s      = excluded.duration_s,
			sent            = excluded.sent,
			received        = excluded.received,
			throughput_rps  = excluded.throughput_rps,
			latency_samples = excluded.latency_samples,
			median_us       = excluded.median_us,
			p99_us          = excluded.p99_us`,
		r.RunID, r.Mode, r.Policy, r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.DurationSeconds, int64(r.Sent), int64(r.Received),
		r.ThroughputRPS, r.LatencySamples, r.MedianMicros, r.P99Micros)
	return err
}

// RecordDispatchStats is a no-op: history keeps finished runs only.
// Implementing it lets the store sit behind the event collector.
func (s *Store) RecordDispatchStats(coremetrics.DispatchStats) error { return nil }

// List returns the most recent runs, newest first. limit <= 0 means no
// limit.
func (s *Store) List(ctx context.Context, limit int) ([]report.Report, error) {
	q := `SELECT run_id, mode, policy, started_at, duration_s, sent, received,
		throughput_rps, latency_samples, median_us, p99_us
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []report.Report
	for rows.Next() {
		r, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the report for one run, or ErrNotFound.
func (s *Store) Get(ctx context.Context, runID string) (report.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, mode, policy, started_at,
		duration_s, sent, received, throughput_rps, latency_samples, median_us, p99_us
		FROM runs WHERE run_id = ?`, runID)
	r, err := scanReport(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Report{}, ErrNotFound
	}
	return r, err
}

func scanReport(scan func(...any) error) (report.Report, error) {
	var r report.Report
	var started string
	var sent, received int64
	if err := scan(&r.RunID, &r.Mode, &r.Policy, &started, &r.DurationSeconds,
		&sent, &received, &r.ThroughputRPS, &r.LatencySamples,
		&r.MedianMicros, &r.P99Micros); err != nil {
		return report.Report{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return report.Report{}, fmt.Errorf("parse started_at: %w", err)
	}
	r.StartedAt = t
	r.Sent = uint64(sent)
	r.Received = uint64(received)
	return r, nil
}
