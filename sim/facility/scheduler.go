package facility

import (
	"github.com/linac-sim/linac-sim/sim"
	"github.com/linac-sim/linac-sim/sim/trace"
)

// runScheduler is the single admission point for backlogged patients: take
// the oldest patient, wait for a slot, start the course, repeat. Because
// there is one scheduler and the backlog and capacity both serve in FIFO
// order, backlogged patients start treatment in arrival order.
func (f *Facility) runScheduler(p *sim.Process) {
	f.backlog.Get(p, func(patient *Patient) {
		f.pendingAdmission++
		f.slots.Acquire(p, 1, func(sim.Wake) {
			f.pendingAdmission--
			f.trace.RecordAdmission(trace.AdmissionRecord{
				PatientID: patient.ID,
				Clock:     f.sim.Clock,
				Route:     trace.RouteScheduled,
				Wait:      f.sim.Clock - patient.ArrivalTime,
			})
			f.startCourse(patient, p)
			f.runScheduler(p)
		})
	})
}
