package sched

// FCFS keeps a single arrival-ordered queue. Requeued work goes to the
// tail, so under a preempting driver it degenerates into round-robin.
type FCFS struct {
	rq *ring
}

func NewFCFS() *FCFS {
	return &FCFS{rq: newRing()}
}

func (p *FCFS) Submit(arrival uint64, cost float64, tenant uint16, tag uint64) {
	p.rq.pushBack(newRequest(arrival, cost, tenant, tag))
}

func (p *FCFS) Next(_ uint64) *Request {
	return p.rq.popFront()
}

func (p *FCFS) Requeue(req *Request) {
	p.rq.pushBack(req)
}

func (p *FCFS) Len() int { return p.rq.len() }

func (p *FCFS) Name() string { return NameFCFS }
