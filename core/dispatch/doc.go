// Package dispatch runs the scheduling loop. A single driver goroutine
// owns the policy: transports and generators hand tasks over through an
// arrival channel, the driver admits them, picks the next request,
// executes one bounded quantum and either requeues the remainder or
// completes the request.
//
// Driver-side state for in-flight requests (reply context, remaining
// work, admission time) lives in an arena keyed by a slot handle the
// request carries opaquely, so the fields a policy sees are never
// touched after creation.
package dispatch
