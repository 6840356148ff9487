// Package loadgen is the UDP load-generation harness. Worker pairs
// share a socket: the sender paces an open loop of 8-byte timestamp
// requests at uniformly random tenants, the receiver counts echoes and,
// on the master worker, samples latency after warmup. The final report
// carries aggregate throughput plus the master's median and p99.
package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	"github.com/ankit-iitb/sandstorm-simulator/core/logger"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/internal/cycles"
)

// Harness runs a configured set of load workers.
type Harness struct {
	cfg     Config
	log     logger.Logger
	targets []*net.UDPAddr
	workers []*worker
}

// New resolves targets and binds the worker sockets. Address parse and
// bind failures are fatal here, before any load starts.
func New(cfg Config, log logger.Logger) (*Harness, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}

	targets, err := resolveTargets(cfg)
	if err != nil {
		return nil, err
	}

	clientIP := net.ParseIP(cfg.ClientIP)
	if clientIP == nil {
		return nil, fmt.Errorf("loadgen: cannot parse client_ip %q", cfg.ClientIP)
	}

	h := &Harness{cfg: cfg, log: log, targets: targets}
	for i := 0; i < cfg.Placement.Workers; i++ {
		port := 0
		if cfg.ClientBasePort > 0 {
			port = cfg.ClientBasePort + i
		}
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: clientIP, Port: port})
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("loadgen: bind worker %d: %w", i, err)
		}
		master := i == cfg.Placement.MasterIndex
		w := &worker{
			id:          i,
			conn:        conn,
			targets:     targets,
			rng:         rand.New(rand.NewPCG(cfg.Seed, uint64(i))),
			log:         log,
			requests:    cfg.Requests,
			responses:   cfg.Responses,
			rateInv:     cycles.PerSecond() / cfg.Rate,
			warmup:      cfg.Warmup,
			master:      master,
			idleTimeout: secondsToDuration(cfg.IdleTimeoutSeconds),
		}
		if master {
			hint := int(cfg.Responses - cfg.Warmup)
			if hint < 0 {
				hint = 0
			}
			w.sampler = report.NewSampler(hint)
		}
		h.workers = append(h.workers, w)
	}
	if cfg.Warmup >= cfg.Responses {
		log.Warnf("warmup %d >= responses %d per worker: no latency samples will be taken", cfg.Warmup, cfg.Responses)
	}
	return h, nil
}

// Run drives all workers to completion and aggregates the report.
// Transport errors along the way are logged, not returned.
func (h *Harness) Run(ctx context.Context) report.Report {
	rep := report.New("loadgen", "")
	h.log.Infof("loadgen up: %d workers, %d tenants, %d req/worker at %d req/s, run=%s",
		len(h.workers), h.cfg.Tenants, h.cfg.Requests, h.cfg.Rate, rep.RunID)

	var wg sync.WaitGroup
	for _, w := range h.workers {
		wg.Add(2)
		go func(w *worker) {
			defer wg.Done()
			pinWorker(h.cfg.Placement.Cores, 2*w.id, h.log)
			w.send(ctx)
		}(w)
		go func(w *worker) {
			defer wg.Done()
			pinWorker(h.cfg.Placement.Cores, 2*w.id+1, h.log)
			w.recv(ctx)
		}(w)
	}
	wg.Wait()

	var recvd, maxElapsed uint64
	var sampler *report.Sampler
	for _, w := range h.workers {
		h.log.Infof("worker %d throughput %.0f resp/s", w.id, w.throughput())
		recvd += w.recvd
		if w.elapsed > maxElapsed {
			maxElapsed = w.elapsed
		}
		if w.master {
			sampler = w.sampler
		}
	}

	sent := uint64(len(h.workers)) * h.cfg.Requests
	rep.Finish(sent, recvd, cycles.ToSeconds(maxElapsed), sampler)
	h.log.Infof("loadgen done: recvd=%d throughput=%.0f median=%.1fus p99=%.1fus",
		recvd, rep.ThroughputRPS, rep.MedianMicros, rep.P99Micros)
	return rep
}

// Close releases the worker sockets.
func (h *Harness) Close() error {
	for _, w := range h.workers {
		if w.conn != nil {
			w.conn.Close()
		}
	}
	return nil
}

// pinWorker applies best-effort core pinning when cores are configured.
func pinWorker(cores []int, slot int, log logger.Logger) {
	if len(cores) == 0 {
		return
	}
	core := cores[slot%len(cores)]
	if err := pinToCore(core); err != nil {
		log.Warnf("pin slot %d to core %d: %v", slot, core, err)
	}
}

func resolveTargets(cfg Config) ([]*net.UDPAddr, error) {
	targets := make([]*net.UDPAddr, 0, cfg.Tenants)
	if len(cfg.Targets) > 0 {
		for t, raw := range cfg.Targets {
			addr, err := net.ResolveUDPAddr("udp", raw)
			if err != nil {
				return nil, fmt.Errorf("loadgen: resolve tenant %d target %q: %w", t, raw, err)
			}
			targets = append(targets, addr)
		}
		return targets, nil
	}
	ip := net.ParseIP(cfg.ServerIP)
	if ip == nil {
		return nil, fmt.Errorf("loadgen: cannot parse server_ip %q", cfg.ServerIP)
	}
	for t := 0; t < cfg.Tenants; t++ {
		targets = append(targets, &net.UDPAddr{IP: ip, Port: cfg.BasePort + t})
	}
	return targets, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
