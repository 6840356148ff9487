package dispatch

import (
	"testing"

	"github.com/ankit-iitb/sandstorm-simulator/internal/cycles"
)

func TestVirtualExecutor(t *testing.T) {
	e := NewVirtualExecutor(1000)
	if e.Now() != 1000 {
		t.Fatalf("Now = %d, want 1000", e.Now())
	}
	if got := e.Run(2); got != 3000 {
		t.Fatalf("Run(2us) = %d, want 3000", got)
	}
	if got := e.AdvanceTo(10000); got != 10000 {
		t.Fatalf("AdvanceTo(10000) = %d, want 10000", got)
	}
	if got := e.AdvanceTo(5); got != 10000 {
		t.Fatalf("AdvanceTo into the past = %d, want 10000", got)
	}
}

func TestSpinExecutorBurnsTime(t *testing.T) {
	e := SpinExecutor{}
	before := cycles.Now()
	end := e.Run(50)
	if end < before+cycles.FromMicros(50) {
		t.Fatalf("Run(50us) ended at %d, want at least %d", end, before+cycles.FromMicros(50))
	}
	if got := e.AdvanceTo(1); got < end {
		t.Fatalf("AdvanceTo in the past went backwards: %d < %d", got, end)
	}
}
