//go:build !linux

package loadgen

// pinToCore is a no-op where thread affinity is not supported; pinning
// is best-effort by contract.
func pinToCore(int) error { return nil }
