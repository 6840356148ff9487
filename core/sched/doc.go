// Package sched holds the request-dispatch core: the Request entity, the
// Policy capability every scheduling algorithm implements, and the closed
// set of shipped policies (fcfs, two-tier feedback, sjf).
//
// A policy is single-owner state. Exactly one dispatch driver calls
// Submit, Next and Requeue in strictly sequential, non-overlapping calls;
// there is no internal locking and every operation completes in amortized
// constant time without blocking. Concurrent producers must hand arrivals
// to the driver through a channel, never call into a policy directly.
package sched
