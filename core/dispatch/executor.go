package dispatch

import "github.com/ankit-iitb/sandstorm-simulator/internal/cycles"

// Executor supplies the driver's clock and burns service time on it.
// The driver calls it from its own goroutine only.
type Executor interface {
	// Now returns the current reading of this executor's clock.
	Now() uint64
	// Run consumes sliceMicros of service time and returns the clock
	// reading when the slice ended.
	Run(sliceMicros float64) uint64
	// AdvanceTo idles until the clock reaches t and returns the new
	// reading. A t in the past is a no-op.
	AdvanceTo(t uint64) uint64
}

// SpinExecutor burns real wall-clock time by polling the cycle counter,
// the way a server core doing the work would. It is the executor for
// live serving.
type SpinExecutor struct{}

func (SpinExecutor) Now() uint64 { return cycles.Now() }

func (SpinExecutor) Run(sliceMicros float64) uint64 {
	target := cycles.Now() + cycles.FromMicros(sliceMicros)
	return spinUntil(target)
}

func (SpinExecutor) AdvanceTo(t uint64) uint64 {
	return spinUntil(t)
}

func spinUntil(target uint64) uint64 {
	for {
		if now := cycles.Now(); now >= target {
			return now
		}
	}
}

// VirtualExecutor advances a virtual clock instead of consuming wall
// time. The simulator and tests use it to run large workloads instantly
// with exact timing.
type VirtualExecutor struct {
	now uint64
}

// NewVirtualExecutor starts the virtual clock at start.
func NewVirtualExecutor(start uint64) *VirtualExecutor {
	return &VirtualExecutor{now: start}
}

func (e *VirtualExecutor) Now() uint64 { return e.now }

func (e *VirtualExecutor) Run(sliceMicros float64) uint64 {
	e.now += cycles.FromMicros(sliceMicros)
	return e.now
}

func (e *VirtualExecutor) AdvanceTo(t uint64) uint64 {
	if t > e.now {
		e.now = t
	}
	return e.now
}
