package facility

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/linac-sim/linac-sim/sim"
)

// Course is one patient's treatment, run as its own process. It holds one
// treatment slot from admission until the last session.
type Course struct {
	f            *Facility
	patient      *Patient
	proc         *sim.Process
	remaining    float64 // days of treatment still owed
	segmentStart float64
}

// Patient returns the patient being treated.
func (c *Course) Patient() *Patient { return c.patient }

// Remaining returns the days still owed at the start of the current segment.
func (c *Course) Remaining() float64 { return c.remaining }

// startCourse admits patient. holder is the process that acquired the slot;
// the slot moves to the course so the course can release it.
func (f *Facility) startCourse(patient *Patient, holder *sim.Process) {
	c := &Course{
		f:         f,
		patient:   patient,
		remaining: float64(patient.RequiredDays),
	}
	c.proc = f.sim.Spawn(fmt.Sprintf("course_%d", patient.ID), c.begin)
	f.slots.Transfer(holder, c.proc, 1)

	patient.Admitted = true
	patient.AdmittedAt = f.sim.Clock
	f.started++
	f.admissionOrder = append(f.admissionOrder, patient.ID)
	f.waitTimes = append(f.waitTimes, patient.Wait())
	logrus.Debugf("[day %8.3f] admit %s after %.1f days", f.sim.Clock, patient, patient.Wait())
}

func (c *Course) begin(p *sim.Process) {
	c.f.active.Add(c)
	c.f.onTreatment++
	c.segment()
}

func (c *Course) segment() {
	c.segmentStart = c.f.sim.Clock
	c.proc.Wait(c.remaining, c.onWake)
}

// onWake either finishes the course or, after an interrupt, charges the
// penalty and waits for what is left. remaining never drops below one day.
func (c *Course) onWake(w sim.Wake) {
	if !w.Interrupted {
		c.finish()
		return
	}
	penalty := c.f.cfg.PenaltyDays
	c.remaining = math.Max(1, c.remaining-w.Elapsed+float64(penalty))
	c.patient.Interruptions++
	c.patient.PenaltyDays += penalty
	c.f.interruptions++
	c.f.penaltyDays += penalty
	logrus.Debugf("[day %8.3f] %s interrupted by %s after %.3f days, %.3f days remaining",
		c.f.sim.Clock, c.patient, w.Cause, w.Elapsed, c.remaining)
	c.segment()
}

func (c *Course) finish() {
	f := c.f
	f.active.Remove(c.patient.ID)
	f.slots.Release(c.proc, 1)
	f.onTreatment--
	f.completed++
	c.patient.Completed = true
	c.patient.CompletedAt = f.sim.Clock
	logrus.Debugf("[day %8.3f] %s completed after %.3f days in treatment",
		f.sim.Clock, c.patient, c.patient.TimeInTreatment())
}
