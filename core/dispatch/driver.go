package dispatch

import (
	"context"

	"github.com/google/uuid"

	"github.com/ankit-iitb/sandstorm-simulator/core/events"
	"github.com/ankit-iitb/sandstorm-simulator/core/logger"
	"github.com/ankit-iitb/sandstorm-simulator/core/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/core/sched"
	"github.com/ankit-iitb/sandstorm-simulator/internal/cycles"
	"github.com/ankit-iitb/sandstorm-simulator/internal/eventbus"
)

// remainderEpsilon absorbs float residue when a quantum divides a cost
// evenly.
const remainderEpsilon = 1e-9

// Deps are the driver's collaborators. Zero values get safe defaults:
// nop logger, nop sink, spin executor, a fresh run ID.
type Deps struct {
	Logger   logger.Logger
	Sink     metrics.MetricsSink
	Bus      *eventbus.Bus
	Executor Executor
	// OnComplete is called on the driver goroutine for every finished
	// request. It must not block.
	OnComplete func(Completion)
	// Sampler, when set, records every completion's sojourn time.
	Sampler *report.Sampler
	RunID   string
}

// Driver owns one policy instance and runs the dispatch loop.
type Driver struct {
	cfg     Config
	policy  sched.Policy
	exec    Executor
	slots   *arena
	log     logger.Logger
	sink    metrics.MetricsSink
	bus     *eventbus.Bus
	onDone  func(Completion)
	sampler *report.Sampler
	runID   string

	quantum    float64
	statsEvery uint64

	submitted  uint64
	dispatched uint64
	requeued   uint64
	completed  uint64

	doneBatch []metrics.Completion
}

// Summary is the driver's final accounting for one run. Started and
// Ended are readings of the executor's clock.
type Summary struct {
	RunID      string
	Policy     string
	Submitted  uint64
	Dispatched uint64
	Requeued   uint64
	Completed  uint64
	Backlog    int
	Started    uint64
	Ended      uint64
}

// ElapsedSeconds is the run duration on the executor's clock.
func (s Summary) ElapsedSeconds() float64 { return cycles.ToSeconds(s.Ended - s.Started) }

// New builds a driver for the configured policy.
func New(cfg Config, deps Deps) (*Driver, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pol, err := sched.New(cfg.Policy)
	if err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop{}
	}
	if deps.Sink == nil {
		deps.Sink = metrics.NopSink{}
	}
	if deps.Executor == nil {
		deps.Executor = SpinExecutor{}
	}
	if deps.RunID == "" {
		deps.RunID = uuid.NewString()
	}
	return &Driver{
		cfg:        cfg,
		policy:     pol,
		exec:       deps.Executor,
		slots:      newArena(cfg.ChannelDepth),
		log:        deps.Logger,
		sink:       deps.Sink,
		bus:        deps.Bus,
		onDone:     deps.OnComplete,
		sampler:    deps.Sampler,
		runID:      deps.RunID,
		quantum:    cfg.QuantumMicros,
		statsEvery: cycles.FromMicros(cfg.StatsEverySeconds * 1e6),
	}, nil
}

// RunID reports the identifier stamped on this driver's events.
func (d *Driver) RunID() string { return d.runID }

// Run executes the dispatch loop until ctx is canceled, or until the
// arrival channel is closed and the backlog fully drained. The caller's
// goroutine becomes the policy's single owner for the duration.
func (d *Driver) Run(ctx context.Context, arrivals <-chan Arrival) Summary {
	started := d.exec.Now()
	d.log.Infof("driver up: policy=%s quantum_us=%v run=%s", d.policy.Name(), d.quantum, d.runID)
	if d.bus != nil {
		d.bus.Publish(events.RunStarted{RunID: d.runID, Policy: d.policy.Name(), At: started})
	}

	open := true
	var pending Arrival
	havePending := false
	nextStats := started + d.statsEvery

	for {
		select {
		case <-ctx.Done():
			return d.finish(started, "canceled")
		default:
		}

		d.admitDue(arrivals, &open, &pending, &havePending)

		req := d.policy.Next(d.exec.Now())
		if req == nil {
			if havePending {
				// Nothing runnable before the next scheduled arrival.
				d.exec.AdvanceTo(pending.At)
				d.admit(pending)
				havePending = false
				continue
			}
			if !open {
				return d.finish(started, "drained")
			}
			select {
			case <-ctx.Done():
				return d.finish(started, "canceled")
			case a, ok := <-arrivals:
				if !ok {
					open = false
					continue
				}
				if a.At > d.exec.Now() {
					pending, havePending = a, true
				} else {
					d.admit(a)
				}
			}
			continue
		}

		d.runSlice(req)

		if now := d.exec.Now(); now >= nextStats {
			d.snapshot(now)
			nextStats = now + d.statsEvery
		}
	}
}

// admitDue admits every arrival scheduled at or before the current
// clock. The first future arrival is held back; producers send in At
// order, so holding one is enough.
func (d *Driver) admitDue(arrivals <-chan Arrival, open *bool, pending *Arrival, havePending *bool) {
	now := d.exec.Now()
	if *havePending {
		if pending.At > now {
			return
		}
		d.admit(*pending)
		*havePending = false
	}
	for *open {
		select {
		case a, ok := <-arrivals:
			if !ok {
				*open = false
				return
			}
			if a.At > now {
				*pending, *havePending = a, true
				return
			}
			d.admit(a)
		default:
			return
		}
	}
}

func (d *Driver) admit(a Arrival) {
	at := a.At
	if at == 0 {
		at = d.exec.Now()
	}
	tag, ent := d.slots.alloc()
	ent.tenant = a.Tenant
	ent.echo = a.Echo
	ent.replyTo = a.ReplyTo
	ent.admitted = at
	ent.cost = a.Cost
	ent.remaining = a.Cost
	d.policy.Submit(at, a.Cost, a.Tenant, tag)
	d.submitted++
}

// runSlice executes one quantum of the request and requeues or
// completes it.
func (d *Driver) runSlice(req *sched.Request) {
	d.dispatched++
	ent := d.slots.at(req.Tag)
	if ent == nil {
		d.log.Errorf("no slot for tag %d, dropping request", req.Tag)
		return
	}

	slice := ent.remaining
	if d.quantum > 0 && slice > d.quantum {
		slice = d.quantum
	}
	end := d.exec.Run(slice)
	ent.remaining -= slice

	if ent.remaining > remainderEpsilon {
		d.policy.Requeue(req)
		d.requeued++
		return
	}

	sojourn := end - req.Arrival
	if d.sampler != nil {
		d.sampler.Record(sojourn)
	}
	d.doneBatch = append(d.doneBatch, metrics.Completion{Tenant: ent.tenant, Sojourn: sojourn, Cost: ent.cost})
	if d.onDone != nil {
		d.onDone(Completion{Tenant: ent.tenant, Echo: ent.echo, ReplyTo: ent.replyTo, Sojourn: sojourn, Cost: ent.cost})
	}
	d.slots.release(req.Tag)
	d.completed++
}

func (d *Driver) snapshot(now uint64) {
	d.flushCompletions()
	st := metrics.DispatchStats{
		RunID:      d.runID,
		Policy:     d.policy.Name(),
		Submitted:  d.submitted,
		Dispatched: d.dispatched,
		Requeued:   d.requeued,
		Completed:  d.completed,
		Backlog:    d.policy.Len(),
		At:         now,
	}
	if err := d.sink.RecordDispatchStats(st); err != nil {
		d.log.Warnf("record dispatch stats: %v", err)
	}
	if d.bus != nil {
		d.bus.Publish(events.StatsSnapshot{
			RunID:      d.runID,
			Policy:     d.policy.Name(),
			Submitted:  d.submitted,
			Dispatched: d.dispatched,
			Requeued:   d.requeued,
			Completed:  d.completed,
			Backlog:    d.policy.Len(),
			At:         now,
		})
	}
}

func (d *Driver) flushCompletions() {
	if len(d.doneBatch) == 0 {
		return
	}
	if rec, ok := d.sink.(metrics.CompletionRecorder); ok {
		if err := rec.RecordCompletions(d.doneBatch); err != nil {
			d.log.Warnf("record completions: %v", err)
		}
	}
	d.doneBatch = d.doneBatch[:0]
}

func (d *Driver) finish(started uint64, reason string) Summary {
	now := d.exec.Now()
	d.snapshot(now)
	s := Summary{
		RunID:      d.runID,
		Policy:     d.policy.Name(),
		Submitted:  d.submitted,
		Dispatched: d.dispatched,
		Requeued:   d.requeued,
		Completed:  d.completed,
		Backlog:    d.policy.Len(),
		Started:    started,
		Ended:      now,
	}
	d.log.Infof("driver down (%s): submitted=%d completed=%d requeued=%d backlog=%d",
		reason, s.Submitted, s.Completed, s.Requeued, s.Backlog)
	return s
}
