package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ankit-iitb/sandstorm-simulator/config"
	"github.com/ankit-iitb/sandstorm-simulator/core/factory"
	"github.com/ankit-iitb/sandstorm-simulator/infra/history"
)

func TestServiceSimulatePersistsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	cfg := config.Default()
	cfg.Sim.Requests = 200
	cfg.Sim.Rate = 100_000
	cfg.Workload.MeanMicros = 5
	cfg.History.Enabled = true
	cfg.History.Path = dbPath

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := svc.Simulate(context.Background())
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if rep.Mode != "simulate" {
		t.Fatalf("mode = %q", rep.Mode)
	}
	if rep.Received != 200 {
		t.Fatalf("received = %d, want 200", rep.Received)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Close waited for the collector, so the report must have hit the
	// database before the store was released.
	store, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen history: %v", err)
	}
	defer store.Close()
	got, err := store.Get(context.Background(), rep.RunID)
	if err != nil {
		t.Fatalf("Get(%s): %v", rep.RunID, err)
	}
	if got.Received != rep.Received || got.Mode != rep.Mode {
		t.Fatalf("persisted report %+v does not match %+v", got, rep)
	}
}

func TestServiceServeDrainsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.BasePort = -1
	cfg.Server.Tenants = 2

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	rep, err := svc.Serve(ctx)
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if rep.Mode != "serve" {
		t.Fatalf("mode = %q", rep.Mode)
	}
	if rep.Received != 0 {
		t.Fatalf("received = %d on an idle server", rep.Received)
	}
}

func TestServiceRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Dispatch.Policy = "lifo"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown policy")
	}

	cfg = config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "bogus"}}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown sink type")
	}
}
