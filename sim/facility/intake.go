package facility

import (
	"github.com/sirupsen/logrus"

	"github.com/linac-sim/linac-sim/sim"
	"github.com/linac-sim/linac-sim/sim/trace"
)

// runIntake refers WeeklyPatients new patients at the start of every
// working week, beginning at day 0.
func (f *Facility) runIntake(p *sim.Process) {
	rng := f.sim.RNG().ForSubsystem(sim.SubsystemIntake)
	for i := 0; i < f.cfg.WeeklyPatients; i++ {
		f.nextPatientID++
		patient := &Patient{
			ID:           f.nextPatientID,
			RequiredDays: f.durations.Sample(rng),
			ArrivalTime:  f.sim.Clock,
		}
		f.patients = append(f.patients, patient)
		f.admit(p, patient)
	}
	logrus.Debugf("[day %8.3f] intake: %d referred, backlog=%d, free slots=%d",
		f.sim.Clock, f.cfg.WeeklyPatients, f.backlog.Len(), f.slots.Available())
	p.Wait(DaysPerWeek, func(sim.Wake) { f.runIntake(p) })
}

// admit applies the configured policy to one new patient. Under
// immediate-bypass a free slot starts the course at once; otherwise the
// patient joins the backlog behind everyone already waiting.
func (f *Facility) admit(p *sim.Process, patient *Patient) {
	if f.cfg.Policy == PolicyImmediateBypass && f.slots.TryAcquire(p, 1) {
		patient.Bypassed = true
		f.trace.RecordAdmission(trace.AdmissionRecord{
			PatientID: patient.ID,
			Clock:     f.sim.Clock,
			Route:     trace.RouteBypass,
		})
		f.startCourse(patient, p)
		return
	}
	f.trace.RecordAdmission(trace.AdmissionRecord{
		PatientID: patient.ID,
		Clock:     f.sim.Clock,
		Route:     trace.RouteBacklog,
	})
	f.backlog.Put(patient)
	if n := f.backlog.Len(); n > f.maxBacklog {
		f.maxBacklog = n
	}
}
