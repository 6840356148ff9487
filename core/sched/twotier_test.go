package sched

import "testing"

func TestTwoTierArrivalOrder(t *testing.T) {
	p := NewTwoTier()

	p.Submit(0, 1.0, 5, 0)
	p.Submit(1, 2.0, 6, 1)

	first := p.Next(2)
	if first == nil || first.Tenant != 5 {
		t.Fatalf("first Next = %+v, want tenant 5", first)
	}
	second := p.Next(3)
	if second == nil || second.Tenant != 6 {
		t.Fatalf("second Next = %+v, want tenant 6", second)
	}
	if got := p.Next(4); got != nil {
		t.Fatalf("Next on empty policy = %+v, want nil", got)
	}
}

func TestTwoTierFreshBeatsReturning(t *testing.T) {
	p := NewTwoTier()

	p.Submit(0, 5.0, 1, 0)
	running := p.Next(1)
	if running == nil || running.Tenant != 1 {
		t.Fatalf("Next = %+v, want tenant 1", running)
	}
	p.Requeue(running)

	p.Submit(2, 1.0, 2, 1)

	if got := p.Next(3); got == nil || got.Tenant != 2 {
		t.Fatalf("Next after fresh arrival = %+v, want tenant 2", got)
	}
	if got := p.Next(4); got == nil || got.Tenant != 1 {
		t.Fatalf("Next after fresh drained = %+v, want requeued tenant 1", got)
	}
}

func TestTwoTierReturningStarvesUnderFreshLoad(t *testing.T) {
	p := NewTwoTier()

	p.Submit(0, 100.0, 1, 0)
	victim := p.Next(1)
	p.Requeue(victim)

	// As long as every dispatch is matched by a fresh arrival, the
	// requeued request never runs.
	for i := 0; i < 1000; i++ {
		p.Submit(uint64(i+2), 1.0, 2, uint64(i+1))
		got := p.Next(uint64(i + 2))
		if got == nil || got.Tenant != 2 {
			t.Fatalf("iteration %d: Next = %+v, want fresh tenant 2", i, got)
		}
	}

	if p.Len() != 1 {
		t.Fatalf("Len = %d, want 1 starved request", p.Len())
	}
	if got := p.Next(5000); got != victim {
		t.Fatalf("after fresh load stops, Next = %+v, want the starved request", got)
	}
}

func TestTwoTierRequeueOrder(t *testing.T) {
	p := NewTwoTier()

	p.Submit(0, 1.0, 1, 0)
	p.Submit(1, 1.0, 2, 1)
	a := p.Next(2)
	b := p.Next(3)
	p.Requeue(a)
	p.Requeue(b)

	if got := p.Next(4); got != a {
		t.Fatalf("returning tier popped %+v, want first requeued", got)
	}
	if got := p.Next(5); got != b {
		t.Fatalf("returning tier popped %+v, want second requeued", got)
	}
}

func TestTwoTierFieldsSurviveRoundTrips(t *testing.T) {
	p := NewTwoTier()

	p.Submit(42, 3.5, 7, 99)
	req := p.Next(50)
	if req == nil {
		t.Fatal("Next returned nil for a submitted request")
	}
	for i := 0; i < 3; i++ {
		p.Requeue(req)
		got := p.Next(uint64(60 + i))
		if got != req {
			t.Fatalf("round trip %d returned a different request", i)
		}
	}
	if req.Arrival != 42 || req.Cost != 3.5 || req.Tenant != 7 || req.Tag != 99 {
		t.Fatalf("fields mutated across round trips: %+v", req)
	}
}

func TestTwoTierEmptyIsIdle(t *testing.T) {
	p := NewTwoTier()
	for i := 0; i < 5; i++ {
		if got := p.Next(uint64(i)); got != nil {
			t.Fatalf("Next on empty policy = %+v, want nil", got)
		}
	}
	if p.Len() != 0 {
		t.Fatalf("Len = %d, want 0", p.Len())
	}
}
