package loadgen

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"os"
	"time"

	"github.com/ankit-iitb/sandstorm-simulator/core/logger"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/internal/cycles"
	"github.com/ankit-iitb/sandstorm-simulator/server"
)

// worker is one sender/receiver pair sharing a socket, mirroring the
// paired client threads of the original harness.
type worker struct {
	id      int
	conn    *net.UDPConn
	targets []*net.UDPAddr
	rng     *rand.Rand
	log     logger.Logger

	requests    uint64
	responses   uint64
	rateInv     uint64
	warmup      uint64
	master      bool
	idleTimeout time.Duration

	// receiver results
	recvd   uint64
	elapsed uint64
	sampler *report.Sampler
}

// send paces the open loop: the first request goes out immediately, and
// request n is due at start + n*rateInv. The loop busy-polls the clock
// between sends rather than sleeping, so pacing stays accurate at
// microsecond gaps.
func (w *worker) send(ctx context.Context) {
	buf := make([]byte, server.EchoSize)
	start := cycles.Now()
	var sent, next uint64
	for sent < w.requests {
		if ctx.Err() != nil {
			return
		}
		curr := cycles.Now()
		if next == 0 || curr >= next {
			server.PutEcho(buf, curr)
			target := w.targets[w.rng.IntN(len(w.targets))]
			if _, err := w.conn.WriteToUDP(buf, target); err != nil {
				w.log.Warnf("worker %d send: %v", w.id, err)
			}
			sent++
			next = start + sent*w.rateInv
		}
	}
}

// recv counts responses until the quota is met, the run is canceled, or
// nothing arrives for the idle timeout. The master worker samples
// latency once past warmup; latency is the gap between the echoed send
// timestamp and now, both readings of this process's clock.
func (w *worker) recv(ctx context.Context) {
	buf := make([]byte, server.EchoSize)
	start := cycles.Now()
	var stop uint64
	idleSince := time.Now()

	for w.recvd < w.responses {
		if ctx.Err() != nil {
			break
		}
		_ = w.conn.SetReadDeadline(time.Now().Add(time.Second))
		n, _, err := w.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				if w.idleTimeout > 0 && time.Since(idleSince) > w.idleTimeout {
					w.log.Warnf("worker %d: no responses for %s, giving up at %d/%d",
						w.id, w.idleTimeout, w.recvd, w.responses)
					break
				}
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			w.log.Warnf("worker %d recv: %v", w.id, err)
			continue
		}
		if n < server.EchoSize {
			continue
		}
		idleSince = time.Now()
		w.recvd++
		if w.recvd > w.warmup && w.master {
			w.sampler.Record(cycles.Since(server.Echo(buf)))
			if w.recvd%1_000_000 == 0 {
				w.log.Infof("worker %d received %d responses", w.id, w.recvd)
			}
		}
		if w.recvd >= w.responses {
			stop = cycles.Now()
		}
	}
	if stop == 0 {
		stop = cycles.Now()
	}
	w.elapsed = stop - start
}

// throughput is this worker's observed response rate.
func (w *worker) throughput() float64 {
	secs := cycles.ToSeconds(w.elapsed)
	if secs <= 0 {
		return 0
	}
	return float64(w.recvd) / secs
}
