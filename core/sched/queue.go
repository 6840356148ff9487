package sched

// ringMinCap is the backlog each queue starts with. Matches the depth the
// dispatch loop reaches under ordinary bursts, so steady-state runs never
// reallocate.
const ringMinCap = 32

// ring is a growable FIFO deque of requests backed by a circular slice.
// All operations are amortized constant time. It is not safe for
// concurrent use; the owning policy is called from a single goroutine.
type ring struct {
	buf  []*Request
	head int
	tail int
	size int
}

func newRing() *ring {
	return &ring{buf: make([]*Request, ringMinCap)}
}

// pushBack appends req at the tail, growing the buffer when full.
func (r *ring) pushBack(req *Request) {
	if r.size == len(r.buf) {
		r.grow()
	}
	r.buf[r.tail] = req
	r.tail = (r.tail + 1) % len(r.buf)
	r.size++
}

// popFront removes and returns the head request, or nil when empty. The
// vacated slot is cleared so the ring never pins a request it no longer
// owns.
func (r *ring) popFront() *Request {
	if r.size == 0 {
		return nil
	}
	req := r.buf[r.head]
	r.buf[r.head] = nil
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	return req
}

func (r *ring) len() int { return r.size }

// grow doubles capacity, unwrapping the circular layout into the new
// buffer so head starts at index zero again.
func (r *ring) grow() {
	bigger := make([]*Request, 2*len(r.buf))
	n := copy(bigger, r.buf[r.head:])
	copy(bigger[n:], r.buf[:r.head])
	r.buf = bigger
	r.head = 0
	r.tail = r.size
}
