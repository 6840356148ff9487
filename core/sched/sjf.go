package sched

import "container/heap"

// SJF orders runnable work by declared cost, cheapest first. Unlike
// TwoTier it reads Cost, so it needs the load generator (or an oracle)
// to declare costs honestly. Requeued work re-enters the same heap and
// competes on cost again, which makes SJF the only shipped policy where
// a requeued request can overtake fresh arrivals.
type SJF struct {
	h   costHeap
	seq uint64
}

func NewSJF() *SJF {
	p := &SJF{h: make(costHeap, 0, ringMinCap)}
	heap.Init(&p.h)
	return p
}

func (p *SJF) Submit(arrival uint64, cost float64, tenant uint16, tag uint64) {
	p.push(newRequest(arrival, cost, tenant, tag))
}

func (p *SJF) Next(_ uint64) *Request {
	if p.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&p.h).(sjfItem).req
}

func (p *SJF) Requeue(req *Request) {
	p.push(req)
}

func (p *SJF) Len() int { return p.h.Len() }

func (p *SJF) Name() string { return NameSJF }

func (p *SJF) push(req *Request) {
	p.seq++
	heap.Push(&p.h, sjfItem{req: req, seq: p.seq})
}

// sjfItem carries an insertion sequence so equal-cost requests pop in
// insertion order, keeping the policy deterministic.
type sjfItem struct {
	req *Request
	seq uint64
}

type costHeap []sjfItem

func (h costHeap) Len() int { return len(h) }

func (h costHeap) Less(i, j int) bool {
	if h[i].req.Cost != h[j].req.Cost {
		return h[i].req.Cost < h[j].req.Cost
	}
	return h[i].seq < h[j].seq
}

func (h costHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *costHeap) Push(x any) { *h = append(*h, x.(sjfItem)) }

func (h *costHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = sjfItem{}
	*h = old[:n-1]
	return it
}
