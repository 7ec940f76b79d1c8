package facility

import (
	"github.com/sirupsen/logrus"

	"github.com/linac-sim/linac-sim/sim"
)

const closureCause = "closure"

// runClosures shuts the whole facility every ClosurePeriodDays, starting
// one period in. Every running course is interrupted.
func (f *Facility) runClosures(p *sim.Process) {
	p.Wait(float64(f.cfg.ClosurePeriodDays), func(sim.Wake) {
		f.closeFacility()
		f.runClosures(p)
	})
}

func (f *Facility) closeFacility() {
	ids := f.active.Snapshot()
	delivered := 0
	for _, id := range ids {
		if f.interrupt(id, closureCause) == nil {
			delivered++
		}
	}
	logrus.Infof("[day %8.3f] closure day: %d of %d courses interrupted", f.sim.Clock, delivered, len(ids))
}
