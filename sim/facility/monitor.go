package facility

import "github.com/linac-sim/linac-sim/sim"

// runMonitor samples backlog length and on-treatment count once a day.
func (f *Facility) runMonitor(p *sim.Process) {
	f.backlogSeries = append(f.backlogSeries, Sample{Day: f.sim.Clock, Count: f.backlog.Len()})
	f.onTreatmentSeries = append(f.onTreatmentSeries, Sample{Day: f.sim.Clock, Count: f.onTreatment})
	p.Wait(1, func(sim.Wake) { f.runMonitor(p) })
}
