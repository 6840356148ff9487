package dispatch

// Arrival is one task entering the system. Transports and generators
// produce Arrivals; only the driver consumes them.
type Arrival struct {
	// Tenant that issued the request.
	Tenant uint16
	// Echo is the opaque payload returned to the requester verbatim.
	Echo uint64
	// Cost is the service demand in microseconds.
	Cost float64
	// ReplyTo is completion context the producer wants back, for
	// example the requester's datagram address. The driver never
	// inspects it.
	ReplyTo any
	// At schedules admission at a point on the executor's clock. Zero
	// means on receipt. The producer must send Arrivals in At order.
	At uint64
}

// Completion reports one finished request to the producer's callback.
type Completion struct {
	Tenant  uint16
	Echo    uint64
	ReplyTo any
	// Sojourn is the time from admission to completion, in cycles.
	Sojourn uint64
	// Cost is the request's declared service demand in microseconds.
	Cost float64
}
