//go:build linux

package loadgen

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore binds the calling goroutine's OS thread to one CPU. The
// thread stays locked so the affinity holds for the worker's lifetime.
func pinToCore(core int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}
