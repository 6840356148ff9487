package sched

import "fmt"

// Policy names accepted by New and reported by Name.
const (
	NameFCFS    = "fcfs"
	NameTwoTier = "two-tier"
	NameSJF     = "sjf"
)

// Policy is the capability a dispatch driver programs against. Ordering
// decisions must be deterministic given the sequence of prior calls, so a
// policy can be audited by replaying its inputs.
type Policy interface {
	// Submit constructs a Request for a newly arrived task and inserts it
	// into the policy's fresh-task storage. It never fails: all shipped
	// policies keep an unbounded backlog.
	Submit(arrival uint64, cost float64, tenant uint16, tag uint64)

	// Next removes and returns the request that should run now, or nil
	// when nothing is pending. Empty is the normal idle signal, not an
	// error. A returned request is out of the policy until Requeue hands
	// it back; the same instance is never returned twice in between.
	// now serves time-aware policies; fcfs and two-tier ignore it.
	Next(now uint64) *Request

	// Requeue inserts a previously dispatched, not-yet-completed request
	// into the policy's returning-task storage. Tenant, Arrival, Cost and
	// Tag are not the policy's to change and pass through as-is.
	Requeue(req *Request)

	// Len reports how many requests the policy currently holds.
	Len() int

	// Name identifies the policy in configs, logs and run reports.
	Name() string
}

// New builds one of the shipped policies by name. The set is closed at
// build time; there is no plugin loading.
func New(name string) (Policy, error) {
	switch name {
	case NameFCFS:
		return NewFCFS(), nil
	case NameTwoTier:
		return NewTwoTier(), nil
	case NameSJF:
		return NewSJF(), nil
	default:
		return nil, fmt.Errorf("unknown scheduling policy %q", name)
	}
}
