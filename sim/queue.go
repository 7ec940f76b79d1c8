// Implements the Store, an unbounded FIFO whose Get suspends the calling
// process until an item is available.

package sim

import (
	"fmt"
	"strings"
)

// Store is an unbounded FIFO of items with a FIFO line of waiting getters.
// An item put while a getter waits is handed to that getter directly and
// never shows up in Len or Peek.
type Store[T any] struct {
	sim     *Simulator
	name    string
	queue   []T        // FIFO queue of items
	getters []*Process // FIFO line of suspended getters
	// inFlight counts items popped for a getter whose resumption has not run yet.
	inFlight int
}

// NewStore creates an empty Store bound to sim.
func NewStore[T any](sim *Simulator, name string) *Store[T] {
	return &Store[T]{sim: sim, name: name}
}

// Put appends item, or hands it to the longest-waiting getter.
func (s *Store[T]) Put(item T) {
	if len(s.getters) > 0 {
		g := s.getters[0]
		s.getters[0] = nil
		s.getters = s.getters[1:]
		s.deliver(g, item)
		return
	}
	s.queue = append(s.queue, item)
}

// Get removes the oldest item and passes it to k, suspending p until an
// item exists. k always runs in a later event at the current time or after.
func (s *Store[T]) Get(p *Process, k func(item T)) {
	if k == nil {
		panic("Get: k must not be nil")
	}
	p.suspend(StateWaitingQueue, func(w Wake) {
		s.inFlight--
		k(w.Item.(T))
	})
	if len(s.queue) > 0 {
		item := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.deliver(p, item)
		return
	}
	s.getters = append(s.getters, p)
}

func (s *Store[T]) deliver(p *Process, item T) {
	s.inFlight++
	s.sim.Schedule(0, PriorityUrgent, "get "+s.name+" by "+p.name, func() {
		p.wake(Wake{Item: item})
	})
}

// Len returns the number of items in the queue.
func (s *Store[T]) Len() int {
	return len(s.queue)
}

// InFlight returns the number of items removed from the queue but not yet
// received by their getter.
func (s *Store[T]) InFlight() int {
	return s.inFlight
}

// Waiting returns the number of suspended getters.
func (s *Store[T]) Waiting() int {
	return len(s.getters)
}

// Peek returns the item at the front of the queue without removing it.
func (s *Store[T]) Peek() (T, bool) {
	if len(s.queue) == 0 {
		var zero T
		return zero, false
	}
	return s.queue[0], true
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage -- callers MUST NOT
// append to or reslice it.
func (s *Store[T]) Items() []T {
	return s.queue
}

func (s *Store[T]) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range s.queue {
		sb.WriteString(fmt.Sprint(val))
		if i < len(s.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
