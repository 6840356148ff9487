package sched

// TwoTier is a feedback approximation of shortest-job-first that never
// inspects cost. New arrivals enter a fresh tier, preempted work a
// returning tier, and Next drains the fresh tier unconditionally before
// touching the returning one. Tasks short enough to finish within their
// first dispatch therefore see minimal queueing, while long tasks absorb
// the delay.
//
// The trade-off is deliberate: a sustained stream of fresh arrivals
// starves the returning tier indefinitely. There is no aging and no
// priority boost; fairness is bounded only by gaps in the arrival
// stream.
type TwoTier struct {
	fresh     *ring
	returning *ring
}

func NewTwoTier() *TwoTier {
	return &TwoTier{fresh: newRing(), returning: newRing()}
}

// Submit places a newly arrived request at the tail of the fresh tier.
func (p *TwoTier) Submit(arrival uint64, cost float64, tenant uint16, tag uint64) {
	p.fresh.pushBack(newRequest(arrival, cost, tenant, tag))
}

// Next pops the oldest fresh request; only when the fresh tier is empty
// does it fall back to the returning tier. Both tiers are FIFO.
func (p *TwoTier) Next(_ uint64) *Request {
	if req := p.fresh.popFront(); req != nil {
		return req
	}
	return p.returning.popFront()
}

// Requeue places a preempted request at the tail of the returning tier.
// It is never promoted back to fresh.
func (p *TwoTier) Requeue(req *Request) {
	p.returning.pushBack(req)
}

func (p *TwoTier) Len() int { return p.fresh.len() + p.returning.len() }

func (p *TwoTier) Name() string { return NameTwoTier }
