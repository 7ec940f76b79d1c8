package facility

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/linac-sim/linac-sim/sim"
	"github.com/linac-sim/linac-sim/sim/trace"
)

// ErrInterruptTargetMissing is returned when a sampled or snapshotted
// patient is no longer in ActiveTreatments at interrupt time.
var ErrInterruptTargetMissing = errors.New("interrupt target not in active treatments")

// Sample is one monitor observation.
type Sample struct {
	Day   float64 `json:"day"`
	Count int     `json:"count"`
}

// Facility is the treatment centre: the shared state every domain process
// reads and mutates. It is owned by a single Simulator and only touched from
// inside event execution, so it needs no locking.
type Facility struct {
	cfg       Config
	sim       *sim.Simulator
	slots     *sim.Capacity
	backlog   *sim.Store[*Patient]
	active    *ActiveTreatments
	durations *durationSampler
	trace     *trace.SimulationTrace

	patients []*Patient // every generated patient, in id order

	nextPatientID    int
	started          int
	completed        int
	pendingAdmission int // taken from the backlog, waiting for a slot
	onTreatment      int
	interruptions    int
	penaltyDays      int
	skipped          int
	maxBacklog       int

	// admissionOrder lists patient ids in the order their courses started.
	admissionOrder []int
	waitTimes      []float64

	backlogSeries     []Sample
	onTreatmentSeries []Sample
}

// Option configures a Facility.
type Option func(*Facility)

// WithTrace enables decision tracing at the given level.
func WithTrace(tc trace.TraceConfig) Option {
	return func(f *Facility) {
		if tc.Enabled() {
			f.trace = trace.NewSimulationTrace(tc)
		}
	}
}

// New validates cfg and builds a facility on a fresh Simulator. No event is
// scheduled until Start.
func New(cfg Config, opts ...Option) (*Facility, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := sim.NewSimulator(sim.NewSimulationKey(cfg.Seed))
	f := &Facility{
		cfg:       cfg,
		sim:       s,
		slots:     sim.NewCapacity(s, "treatment-slots", cfg.TotalSlots()),
		backlog:   sim.NewStore[*Patient](s, "backlog"),
		active:    NewActiveTreatments(),
		durations: newDurationSampler(cfg.NormalizedWeights()),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Sim returns the underlying Simulator.
func (f *Facility) Sim() *sim.Simulator { return f.sim }

// Slots returns the treatment-slot capacity.
func (f *Facility) Slots() *sim.Capacity { return f.slots }

// Backlog returns the waiting-list store.
func (f *Facility) Backlog() *sim.Store[*Patient] { return f.backlog }

// Active returns the table of running courses.
func (f *Facility) Active() *ActiveTreatments { return f.active }

// Patients returns every generated patient in id order.
func (f *Facility) Patients() []*Patient { return f.patients }

// Start spawns the domain processes. The monitor goes first so a sample
// exists at day 0 before any patient arrives.
func (f *Facility) Start() {
	f.sim.Spawn("monitor", f.runMonitor)
	f.sim.Spawn("intake", f.runIntake)
	f.sim.Spawn("treatment-scheduler", f.runScheduler)
	if f.cfg.SessionsLostPerBreakdown() > 0 {
		for unit := 0; unit < f.cfg.Units; unit++ {
			f.startBreakdowns(unit)
		}
	}
	if f.cfg.ClosureEnabled {
		f.sim.Spawn("closure", f.runClosures)
	}
	logrus.Infof("facility started: %d slots (%d units x %d h x %d sessions/h), %d patients/week, policy=%s",
		f.cfg.TotalSlots(), f.cfg.Units, f.cfg.HoursPerDay, f.cfg.SessionsPerHour, f.cfg.WeeklyPatients, f.cfg.Policy)
}

// Run validates cfg, simulates the configured horizon and returns the result.
// Configuration errors are returned before any event is scheduled; a
// capacity invariant violation halts the run and is returned wrapped.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	f, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	f.Start()
	if err := f.sim.RunUntil(ctx, cfg.HorizonDays()); err != nil {
		return nil, err
	}
	if err := f.slots.CheckInvariant(); err != nil {
		return nil, err
	}
	return f.Result()
}

// interrupt delivers an interrupt to the course of patient id. Every
// outcome is recorded; missing or non-interruptible targets are skipped.
func (f *Facility) interrupt(id int, cause string) error {
	record := trace.InterruptionRecord{PatientID: id, Clock: f.sim.Clock, Cause: cause}
	course, ok := f.active.Get(id)
	var err error
	if !ok {
		err = fmt.Errorf("patient %d: %w", id, ErrInterruptTargetMissing)
	} else {
		err = course.proc.Interrupt(cause)
	}
	if err != nil {
		f.skipped++
		record.Reason = skipReason(err)
		f.trace.RecordInterruption(record)
		logrus.Debugf("[day %8.3f] %s: skipped interrupt: %v", f.sim.Clock, cause, err)
		return err
	}
	record.Delivered = true
	f.trace.RecordInterruption(record)
	return nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrInterruptTargetMissing):
		return "target missing"
	case errors.Is(err, sim.ErrAlreadyInterrupted):
		return "already interrupted"
	case errors.Is(err, sim.ErrProcessCompleted):
		return "completed"
	case errors.Is(err, sim.ErrNotInterruptible):
		return "not interruptible"
	default:
		return err.Error()
	}
}
