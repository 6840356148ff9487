package scenarios

import (
	"context"
	"testing"

	"github.com/ankit-iitb/sandstorm-simulator/sim"
)

// RunScenario simulates the scenario and checks its expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	rep, sum, err := sim.Run(context.Background(), sim.Config{
		Requests: sc.Requests,
		Rate:     sc.Rate,
		Workload: sc.Workload.ToConfig(),
		Dispatch: sc.Dispatch.ToConfig(),
	}, sim.Deps{})
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	if sum.Completed != sc.Expected.Completed {
		t.Errorf("scenario %s expected %d completed, got %d", sc.Name, sc.Expected.Completed, sum.Completed)
	}
	if sc.Expected.Requeued != nil && sum.Requeued != *sc.Expected.Requeued {
		t.Errorf("scenario %s expected %d requeued, got %d", sc.Name, *sc.Expected.Requeued, sum.Requeued)
	}
	if sc.Expected.MaxMedianMicros > 0 && rep.MedianMicros > sc.Expected.MaxMedianMicros {
		t.Errorf("scenario %s median %.3fus exceeds %.3fus", sc.Name, rep.MedianMicros, sc.Expected.MaxMedianMicros)
	}
	if sc.Expected.MaxP99Micros > 0 && rep.P99Micros > sc.Expected.MaxP99Micros {
		t.Errorf("scenario %s p99 %.3fus exceeds %.3fus", sc.Name, rep.P99Micros, sc.Expected.MaxP99Micros)
	}
}
