package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ProcessID uniquely identifies a process within one Simulator.
type ProcessID int64

// State is the lifecycle state of a Process.
//
//	Runnable ──Wait──────► WaitingTimer ──expiry──────► Runnable
//	         ──Acquire───► WaitingResource ──grant────► Runnable
//	         ──Get───────► WaitingQueue ──hand-off────► Runnable
//	WaitingTimer ──Interrupt──► Interrupted ──delivery──► Runnable
//	Runnable ──continuation returns without suspending──► Completed
type State int

const (
	StateRunnable State = iota
	StateWaitingTimer
	StateWaitingResource
	StateWaitingQueue
	StateInterrupted
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunnable:
		return "runnable"
	case StateWaitingTimer:
		return "waiting(timer)"
	case StateWaitingResource:
		return "waiting(resource)"
	case StateWaitingQueue:
		return "waiting(queue)"
	case StateInterrupted:
		return "interrupted"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Wake is what a suspended process receives when it resumes.
type Wake struct {
	// Interrupted is true when the wait ended early because of Interrupt.
	Interrupted bool
	// Cause is the reason passed to Interrupt.
	Cause string
	// Elapsed is the time spent suspended, in working days.
	Elapsed float64
	// Item carries the value handed over by a Store.
	Item any
}

// Continuation is the rest of a process after a suspension point.
type Continuation func(Wake)

// Process is a suspendable unit of execution. It is written as a chain of
// continuations: each suspension (Wait, Capacity.Acquire, Store.Get) stores
// the continuation to run on resumption. A continuation that returns without
// suspending again completes the process.
type Process struct {
	id    ProcessID
	name  string
	sim   *Simulator
	state State

	resume    Continuation
	timer     *Event
	waitStart float64
}

// Spawn creates a process and schedules start to run at the current time.
// Processes spawned at the same instant start in spawn order.
func (sim *Simulator) Spawn(name string, start func(p *Process)) *Process {
	if start == nil {
		panic("Spawn: start must not be nil")
	}
	sim.nextPID++
	p := &Process{
		id:    sim.nextPID,
		name:  name,
		sim:   sim,
		state: StateRunnable,
	}
	sim.Schedule(0, PriorityUrgent, "start "+name, func() {
		p.dispatch(func(Wake) { start(p) }, Wake{})
	})
	return p
}

// ID returns the process identifier.
func (p *Process) ID() ProcessID { return p.id }

// Name returns the name given at spawn time.
func (p *Process) Name() string { return p.name }

// State returns the current lifecycle state.
func (p *Process) State() State { return p.state }

// Sim returns the Simulator the process belongs to.
func (p *Process) Sim() *Simulator { return p.sim }

func (p *Process) String() string {
	return fmt.Sprintf("%s#%d(%s)", p.name, p.id, p.state)
}

// Wait suspends the process for delay working days. It is the only
// interruptible suspension.
func (p *Process) Wait(delay float64, k Continuation) {
	p.suspend(StateWaitingTimer, k)
	p.waitStart = p.sim.Clock
	p.timer = p.sim.Schedule(delay, PriorityNormal, "timeout "+p.name, func() {
		p.timer = nil
		p.wake(Wake{Elapsed: p.sim.Clock - p.waitStart})
	})
}

// Interrupt ends the target's timer wait early. The target resumes at the
// current time, before any timer expiring at this instant, with
// Wake.Interrupted set and Wake.Elapsed holding the time it had waited.
//
// Interrupting a completed process, a process whose previous interrupt has
// not been delivered yet, or a process not waiting on a timer is a no-op
// that reports ErrProcessCompleted, ErrAlreadyInterrupted or
// ErrNotInterruptible respectively.
func (p *Process) Interrupt(cause string) error {
	switch p.state {
	case StateCompleted:
		return fmt.Errorf("interrupt %s: %w", p, ErrProcessCompleted)
	case StateInterrupted:
		return fmt.Errorf("interrupt %s: %w", p, ErrAlreadyInterrupted)
	case StateWaitingTimer:
	default:
		return fmt.Errorf("interrupt %s: %w", p, ErrNotInterruptible)
	}
	if p.timer != nil {
		p.timer.Cancel()
		p.timer = nil
	}
	p.state = StateInterrupted
	elapsed := p.sim.Clock - p.waitStart
	logrus.Debugf("[day %8.3f] interrupt %s after %.3f days: %s", p.sim.Clock, p.name, elapsed, cause)
	p.sim.Schedule(0, PriorityUrgent, "interrupt "+p.name, func() {
		p.wake(Wake{Interrupted: true, Cause: cause, Elapsed: elapsed})
	})
	return nil
}

func (p *Process) suspend(state State, k Continuation) {
	if k == nil {
		panic(fmt.Sprintf("%s: continuation must not be nil", p.name))
	}
	if p.state != StateRunnable {
		panic(fmt.Sprintf("%s: suspend from state %s", p.name, p.state))
	}
	p.state = state
	p.resume = k
}

func (p *Process) wake(w Wake) {
	k := p.resume
	if k == nil || p.state == StateCompleted {
		return
	}
	p.resume = nil
	p.dispatch(k, w)
}

func (p *Process) dispatch(k Continuation, w Wake) {
	p.state = StateRunnable
	k(w)
	if p.state == StateRunnable {
		p.state = StateCompleted
		logrus.Tracef("[day %8.3f] %s completed", p.sim.Clock, p.name)
	}
}
