package sched

// Request is one unit of schedulable work: a single tenant RPC waiting to
// run. A Request lives in exactly one queue at a time. Submit transfers
// ownership to the policy; Next transfers it back to the driver, and the
// policy forgets the request entirely until an eventual Requeue.
type Request struct {
	// Tenant identifies the owning tenant (small-integer domain).
	Tenant uint16

	// Arrival is the cycle reading captured when the request entered the
	// policy. It feeds external latency accounting; the shipped policies
	// do not order by it beyond plain queue position.
	Arrival uint64

	// Cost is the estimated execution cost in cycles supplied at
	// creation. Policies carry it unchanged and never recompute it;
	// whether it influences ordering is up to the concrete policy.
	Cost float64

	// Tag is an opaque correlation handle owned by the dispatch driver,
	// typically an arena slot index. Policies pass it through untouched.
	Tag uint64
}

func newRequest(arrival uint64, cost float64, tenant uint16, tag uint64) *Request {
	return &Request{Tenant: tenant, Arrival: arrival, Cost: cost, Tag: tag}
}
