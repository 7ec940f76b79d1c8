// sim/simulator.go
package sim

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time, the pending
// event queue and the event loop. It is single-threaded: exactly one event
// executes at a time and runs to completion before the next is popped.
type Simulator struct {
	// Clock is the current logical time in working days.
	Clock float64
	// Horizon is the last time for which events are executed. Set by RunUntil.
	Horizon float64

	queue   EventQueue
	nextSeq int64
	nextPID ProcessID
	rng     *PartitionedRNG

	// fatal is the first unrecoverable error raised by a resource or the
	// loop itself. Once set, RunUntil stops before the next event.
	fatal error

	// OnAdvance, if set, is called after the clock moves and before the
	// event executes.
	OnAdvance func(prev, now float64)

	executed int
	skipped  int
}

// NewSimulator creates a Simulator at time 0 whose random streams derive from key.
func NewSimulator(key SimulationKey) *Simulator {
	return &Simulator{
		queue: make(EventQueue, 0),
		rng:   NewPartitionedRNG(key),
	}
}

// Now returns the current simulation time.
func (sim *Simulator) Now() float64 { return sim.Clock }

// RNG returns the partitioned random source for this run.
func (sim *Simulator) RNG() *PartitionedRNG { return sim.rng }

// Pending returns the number of events in the queue, cancelled ones included.
func (sim *Simulator) Pending() int { return len(sim.queue) }

// Executed returns the number of events that have run.
func (sim *Simulator) Executed() int { return sim.executed }

// Skipped returns the number of cancelled events discarded by the loop.
func (sim *Simulator) Skipped() int { return sim.skipped }

// Schedule pushes fn to run at Clock+delay. Events at the same time run in
// priority order, then in the order they were scheduled.
func (sim *Simulator) Schedule(delay float64, priority Priority, label string, fn func()) *Event {
	if delay < 0 {
		panic(fmt.Sprintf("Schedule: negative delay %v for %q", delay, label))
	}
	if fn == nil {
		panic("Schedule: fn must not be nil")
	}
	sim.nextSeq++
	ev := &Event{
		time:     sim.Clock + delay,
		priority: priority,
		seqID:    sim.nextSeq,
		label:    label,
		fn:       fn,
	}
	heap.Push(&sim.queue, ev)
	return ev
}

// Fail records err as the fatal error of the run. Only the first call has
// an effect. The loop stops before executing another event.
func (sim *Simulator) Fail(err error) {
	if sim.fatal != nil {
		return
	}
	logrus.Errorf("[day %8.3f] simulation halted: %v", sim.Clock, err)
	sim.fatal = err
}

// Err returns the fatal error recorded by Fail, if any.
func (sim *Simulator) Err() error { return sim.fatal }

// RunUntil executes events in (time, priority, seq) order until the queue
// is empty, the next event lies beyond horizon, ctx is done, or a fatal
// error was recorded. Events at exactly horizon are executed.
func (sim *Simulator) RunUntil(ctx context.Context, horizon float64) error {
	sim.Horizon = horizon
	for sim.fatal == nil {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted at day %.3f: %w", sim.Clock, err)
		}
		next := sim.queue.Peek()
		if next == nil || next.time > horizon {
			break
		}
		ev := heap.Pop(&sim.queue).(*Event)
		if ev.cancelled {
			sim.skipped++
			continue
		}
		if ev.time < sim.Clock {
			sim.Fail(fmt.Errorf("%w: event %q at %v popped after clock %v",
				ErrClockRegression, ev.label, ev.time, sim.Clock))
			break
		}
		prev := sim.Clock
		sim.Clock = ev.time
		if sim.OnAdvance != nil {
			sim.OnAdvance(prev, sim.Clock)
		}
		logrus.Tracef("[day %8.3f] executing %s (seq %d, %s)", sim.Clock, ev.label, ev.seqID, ev.priority)
		ev.fn()
		sim.executed++
	}
	logrus.Infof("[day %8.3f] simulation ended: %d events executed, %d cancelled, %d pending",
		sim.Clock, sim.executed, sim.skipped, len(sim.queue))
	if sim.fatal != nil {
		return fmt.Errorf("simulation halted at day %.3f: %w", sim.Clock, sim.fatal)
	}
	return nil
}
