package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type capacityRequest struct {
	proc        *Process
	n           int
	requestedAt float64
}

// Capacity is a counting resource with a fixed total. Units are held per
// process; Transfer moves them when the process that acquired a unit is not
// the one that will release it.
//
// Invariant: available + Σ held == total and 0 <= available <= total. Every
// mutation re-checks it and a violation halts the Simulator.
type Capacity struct {
	sim       *Simulator
	name      string
	total     int
	available int
	held      map[ProcessID]int
	waiters   []*capacityRequest
}

// NewCapacity creates a Capacity with all total units available.
func NewCapacity(sim *Simulator, name string, total int) *Capacity {
	if total <= 0 {
		panic(fmt.Sprintf("NewCapacity: total must be > 0, got %d", total))
	}
	return &Capacity{
		sim:       sim,
		name:      name,
		total:     total,
		available: total,
		held:      make(map[ProcessID]int),
	}
}

// Total returns the fixed capacity.
func (c *Capacity) Total() int { return c.total }

// Available returns the number of free units.
func (c *Capacity) Available() int { return c.available }

// InUse returns the number of units held by processes.
func (c *Capacity) InUse() int {
	sum := 0
	for _, n := range c.held {
		sum += n
	}
	return sum
}

// HeldBy returns the units currently held by p.
func (c *Capacity) HeldBy(p *Process) int { return c.held[p.id] }

// Waiting returns the number of suspended acquirers.
func (c *Capacity) Waiting() int { return len(c.waiters) }

// TryAcquire takes n units for p without suspending. It fails when fewer
// than n units are free or when another process is already waiting, so a
// non-blocking caller never overtakes the FIFO line.
func (c *Capacity) TryAcquire(p *Process, n int) bool {
	if !c.validRequest(n) {
		return false
	}
	if len(c.waiters) > 0 || c.available < n {
		return false
	}
	c.take(p, n)
	return true
}

// Acquire takes n units for p, suspending it until they are free. Waiting
// acquirers are served in request order. The grant is reserved
// synchronously; p resumes at the same instant with Wake.Elapsed holding
// the time it waited.
func (c *Capacity) Acquire(p *Process, n int, k Continuation) {
	if !c.validRequest(n) {
		return
	}
	p.suspend(StateWaitingResource, k)
	req := &capacityRequest{proc: p, n: n, requestedAt: c.sim.Clock}
	if len(c.waiters) == 0 && c.available >= n {
		c.grant(req)
		return
	}
	logrus.Debugf("[day %8.3f] %s waits for %d unit(s) of %s (%d free, %d waiting)",
		c.sim.Clock, p.name, n, c.name, c.available, len(c.waiters))
	c.waiters = append(c.waiters, req)
}

// Release returns n units held by p and grants them to waiting acquirers in
// FIFO order, within the same scheduler step.
func (c *Capacity) Release(p *Process, n int) {
	if !c.validRequest(n) {
		return
	}
	if c.held[p.id] < n {
		c.sim.Fail(fmt.Errorf("%w: %s releases %d unit(s) of %s but holds %d",
			ErrCapacityInvariant, p.name, n, c.name, c.held[p.id]))
		return
	}
	c.held[p.id] -= n
	if c.held[p.id] == 0 {
		delete(c.held, p.id)
	}
	c.available += n
	if !c.check() {
		return
	}
	for len(c.waiters) > 0 && c.waiters[0].n <= c.available {
		req := c.waiters[0]
		c.waiters[0] = nil
		c.waiters = c.waiters[1:]
		c.grant(req)
	}
}

// Transfer moves n held units from one process to another without making
// them available in between.
func (c *Capacity) Transfer(from, to *Process, n int) {
	if !c.validRequest(n) {
		return
	}
	if c.held[from.id] < n {
		c.sim.Fail(fmt.Errorf("%w: %s transfers %d unit(s) of %s but holds %d",
			ErrCapacityInvariant, from.name, n, c.name, c.held[from.id]))
		return
	}
	c.held[from.id] -= n
	if c.held[from.id] == 0 {
		delete(c.held, from.id)
	}
	c.held[to.id] += n
	c.check()
}

// CheckInvariant returns an error wrapping ErrCapacityInvariant if the
// conservation invariant does not hold.
func (c *Capacity) CheckInvariant() error {
	inUse := c.InUse()
	if c.available < 0 || c.available > c.total || c.available+inUse != c.total {
		return fmt.Errorf("%w: %s available=%d in-use=%d total=%d",
			ErrCapacityInvariant, c.name, c.available, inUse, c.total)
	}
	return nil
}

func (c *Capacity) take(p *Process, n int) {
	c.available -= n
	c.held[p.id] += n
	c.check()
}

func (c *Capacity) grant(req *capacityRequest) {
	c.take(req.proc, req.n)
	waited := c.sim.Clock - req.requestedAt
	c.sim.Schedule(0, PriorityUrgent, "grant "+c.name+" to "+req.proc.name, func() {
		req.proc.wake(Wake{Elapsed: waited})
	})
}

func (c *Capacity) validRequest(n int) bool {
	if n <= 0 || n > c.total {
		c.sim.Fail(fmt.Errorf("%w: request of %d unit(s) on %s with total %d",
			ErrCapacityInvariant, n, c.name, c.total))
		return false
	}
	return true
}

func (c *Capacity) check() bool {
	if err := c.CheckInvariant(); err != nil {
		c.sim.Fail(err)
		return false
	}
	return true
}
