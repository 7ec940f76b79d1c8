package sim

import "fmt"

// Priority orders events that share a timestamp. Lower values run first.
type Priority int

const (
	// PriorityUrgent is used for process starts, resource grants, queue
	// hand-offs and interrupt deliveries. These run before any timer that
	// expires at the same instant.
	PriorityUrgent Priority = 0
	// PriorityNormal is used for timer expiries.
	PriorityNormal Priority = 1
)

func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityNormal:
		return "normal"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Event is a pending resumption. It is owned by the Simulator until it
// fires; after that, what happens next belongs to the awakened process.
type Event struct {
	time      float64  // scheduled time (working days)
	priority  Priority // same-time ordering class
	seqID     int64    // assigned at scheduling time, FIFO tie-break
	label     string   // used in trace logs only
	cancelled bool
	fn        func()
}

// Timestamp returns the scheduled time of the event.
func (e *Event) Timestamp() float64 { return e.time }

// Priority returns the same-time ordering class of the event.
func (e *Event) Priority() Priority { return e.priority }

// SeqID returns the scheduling sequence number of the event.
func (e *Event) SeqID() int64 { return e.seqID }

// Label returns the human-readable label given at scheduling time.
func (e *Event) Label() string { return e.label }

// Cancel marks the event so the scheduler skips it when it is popped.
// Cancelled events stay in the heap (lazy deletion).
func (e *Event) Cancel() { e.cancelled = true }

// Cancelled reports whether Cancel was called.
func (e *Event) Cancelled() bool { return e.cancelled }

// EventQueue is a min-heap ordered by (Timestamp, Priority, seqID).
// Implements heap.Interface.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []*Event

func (q EventQueue) Len() int { return len(q) }

func (q EventQueue) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seqID < q[j].seqID
}

func (q EventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *EventQueue) Push(x any) {
	*q = append(*q, x.(*Event))
}

func (q *EventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Peek returns the earliest event without removing it, or nil if empty.
func (q EventQueue) Peek() *Event {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
