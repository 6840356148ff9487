// Package cycles provides the monotonic timebase shared by the scheduler
// core, the server and the load generator. One cycle is one nanosecond of
// the process-local monotonic clock, counted from process start, so cycle
// counts fit the 8-byte wire timestamp and never go backwards.
package cycles

import "time"

var base = time.Now()

// NowFunc returns the current cycle count. Override in tests for determinism.
var NowFunc = func() uint64 { return uint64(time.Since(base)) }

// Now returns the cycles elapsed since process start.
func Now() uint64 { return NowFunc() }

// PerSecond returns the number of cycles in one second.
func PerSecond() uint64 { return 1_000_000_000 }

// ToSeconds converts a cycle count or cycle delta to seconds.
func ToSeconds(c uint64) float64 { return float64(c) / float64(PerSecond()) }

// ToMicros converts a cycle count or cycle delta to microseconds.
func ToMicros(c uint64) float64 { return float64(c) / (float64(PerSecond()) / 1e6) }

// FromMicros converts a duration in microseconds to cycles.
func FromMicros(us float64) uint64 {
	if us <= 0 {
		return 0
	}
	return uint64(us * (float64(PerSecond()) / 1e6))
}

// Since returns the cycles elapsed since the reading c, clamped at zero so
// a stale reading never yields a huge unsigned wrap.
func Since(c uint64) uint64 {
	now := Now()
	if now < c {
		return 0
	}
	return now - c
}
