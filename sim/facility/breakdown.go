package facility

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/linac-sim/linac-sim/sim"
)

// startBreakdowns spawns the breakdown cycle of one treatment unit.
func (f *Facility) startBreakdowns(unit int) {
	rng := f.sim.RNG().ForSubsystem(sim.SubsystemBreakdown(unit))
	cause := fmt.Sprintf("breakdown unit %d", unit)
	var week func(p *sim.Process)
	week = func(p *sim.Process) {
		offset := rng.Float64() * DaysPerWeek
		p.Wait(offset, func(sim.Wake) {
			f.breakDown(rng, cause)
			p.Wait(DaysPerWeek-offset, func(sim.Wake) { week(p) })
		})
	}
	f.sim.Spawn(fmt.Sprintf("breakdown_%d", unit), week)
}

// breakDown interrupts up to SessionsLostPerBreakdown running courses,
// chosen uniformly without replacement.
func (f *Facility) breakDown(rng *rand.Rand, cause string) {
	ids := f.active.Snapshot()
	k := min(f.cfg.SessionsLostPerBreakdown(), len(ids))
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	delivered := 0
	for _, id := range ids[:k] {
		if f.interrupt(id, cause) == nil {
			delivered++
		}
	}
	logrus.Infof("[day %8.3f] %s: %d of %d sampled courses interrupted", f.sim.Clock, cause, delivered, k)
}
