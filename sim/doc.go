// Package sim provides the discrete-event simulation kernel for linac-sim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: Event and the (time, priority, seq) ordered EventQueue
//   - simulator.go: the event loop (Schedule, RunUntil, Fail)
//   - process.go: Process, its lifecycle states, Wait and Interrupt
//   - resource.go: Capacity, a counting resource with a FIFO wait line
//   - queue.go: Store, an unbounded FIFO whose Get suspends
//
// # Execution Model
//
// The kernel is single-threaded and cooperative. A process is a chain of
// continuations; each suspension point stores the continuation to run when
// the process resumes. Resumptions that happen "immediately" (process start,
// resource grants, queue hand-offs, interrupt deliveries) are scheduled as
// urgent events at the current time, so they run before any timer expiring
// at the same instant and continuations never nest.
//
// Domain processes (intake, treatment courses, breakdowns, closures, the
// monitor) live in sim/facility.
package sim
