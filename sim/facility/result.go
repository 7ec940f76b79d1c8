// Tracks the outcome of a run: patient counts, waiting times and the two
// daily time series consumed by reporting.

package facility

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/linac-sim/linac-sim/sim/trace"
)

// runKeyNamespace scopes RunKey UUIDs to this simulator.
var runKeyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/linac-sim/linac-sim/run"))

// RunKey returns a deterministic identifier for cfg: the SHA-1 name-based
// UUID of its canonical YAML encoding. Identical configurations, seed
// included, share a key.
func RunKey(cfg Config) (uuid.UUID, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encoding config for run key: %w", err)
	}
	return uuid.NewSHA1(runKeyNamespace, data), nil
}

// Result aggregates statistics about one simulation run.
type Result struct {
	RunKey      uuid.UUID `json:"run_key"`
	Config      Config    `json:"config"`
	HorizonDays float64   `json:"horizon_days"`
	TotalSlots  int       `json:"total_slots"`

	PatientsGenerated int `json:"patients_generated"`
	PatientsStarted   int `json:"patients_started"`
	PatientsCompleted int `json:"patients_completed"`
	PendingAdmission  int `json:"pending_admission"` // taken from the backlog, waiting for a slot
	FinalBacklogSize  int `json:"final_backlog_size"`
	MaxBacklogSize    int `json:"max_backlog_size"`
	OnTreatmentAtEnd  int `json:"on_treatment_at_end"`

	Interruptions     int `json:"interruptions"`      // interrupts absorbed by courses
	PenaltyDaysAdded  int `json:"penalty_days_added"` // total days added by those interrupts
	SkippedInterrupts int `json:"skipped_interrupts"` // missing, coalesced or non-interruptible targets
	EventsExecuted    int `json:"events_executed"`

	WaitTimes         []float64 `json:"wait_times"` // days from referral to admission, admission order
	BacklogSeries     []Sample  `json:"backlog_series"`
	OnTreatmentSeries []Sample  `json:"on_treatment_series"`

	Trace *trace.TraceSummary `json:"trace,omitempty"`
}

// Result snapshots the facility's current state.
func (f *Facility) Result() (*Result, error) {
	key, err := RunKey(f.cfg)
	if err != nil {
		return nil, err
	}
	r := &Result{
		RunKey:            key,
		Config:            f.cfg,
		HorizonDays:       f.cfg.HorizonDays(),
		TotalSlots:        f.slots.Total(),
		PatientsGenerated: f.nextPatientID,
		PatientsStarted:   f.started,
		PatientsCompleted: f.completed,
		PendingAdmission:  f.pendingAdmission,
		FinalBacklogSize:  f.backlog.Len(),
		MaxBacklogSize:    f.maxBacklog,
		OnTreatmentAtEnd:  f.onTreatment,
		Interruptions:     f.interruptions,
		PenaltyDaysAdded:  f.penaltyDays,
		SkippedInterrupts: f.skipped,
		EventsExecuted:    f.sim.Executed(),
		WaitTimes:         append([]float64(nil), f.waitTimes...),
		BacklogSeries:     append([]Sample(nil), f.backlogSeries...),
		OnTreatmentSeries: append([]Sample(nil), f.onTreatmentSeries...),
	}
	if f.trace != nil {
		r.Trace = trace.Summarize(f.trace)
	}
	return r, nil
}

// MeanWait returns the mean admission wait in days.
func (r *Result) MeanWait() float64 { return CalculateMean(r.WaitTimes) }

// MaxWait returns the longest admission wait in days.
func (r *Result) MaxWait() float64 { return CalculateMax(r.WaitTimes) }

// WaitPercentile returns the p-th percentile admission wait in days.
func (r *Result) WaitPercentile(p float64) float64 { return CalculatePercentile(r.WaitTimes, p) }

// Print displays the run summary.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Simulation Results (%d weeks, %s) ===\n", r.Config.HorizonWeeks, r.Config.Policy)
	fmt.Fprintf(w, "Run Key              : %s\n", r.RunKey)
	fmt.Fprintf(w, "Treatment Slots      : %d\n", r.TotalSlots)
	fmt.Fprintf(w, "Patients Generated   : %d\n", r.PatientsGenerated)
	fmt.Fprintf(w, "Patients Started     : %d\n", r.PatientsStarted)
	fmt.Fprintf(w, "Patients Completed   : %d\n", r.PatientsCompleted)
	fmt.Fprintf(w, "On Treatment At End  : %d\n", r.OnTreatmentAtEnd)
	fmt.Fprintf(w, "Final Backlog        : %d\n", r.FinalBacklogSize)
	fmt.Fprintf(w, "Max Backlog          : %d\n", r.MaxBacklogSize)
	if r.PendingAdmission > 0 {
		fmt.Fprintf(w, "Pending Admission    : %d\n", r.PendingAdmission)
	}
	if len(r.WaitTimes) > 0 {
		fmt.Fprintf(w, "Average Wait         : %.2f days\n", r.MeanWait())
		fmt.Fprintf(w, "P95 Wait             : %.2f days\n", r.WaitPercentile(95))
		fmt.Fprintf(w, "Maximum Wait         : %.2f days\n", r.MaxWait())
	} else {
		fmt.Fprintln(w, "No patients were admitted in this simulation.")
	}
	fmt.Fprintf(w, "Interruptions        : %d (%d penalty days, %d skipped)\n",
		r.Interruptions, r.PenaltyDaysAdded, r.SkippedInterrupts)
	if r.Trace != nil {
		fmt.Fprintf(w, "Admissions (trace)   : %d bypass, %d backlogged, %d scheduled\n",
			r.Trace.BypassedCount, r.Trace.BackloggedCount, r.Trace.ScheduledCount)
		causes := make([]string, 0, len(r.Trace.CauseDistribution))
		for cause := range r.Trace.CauseDistribution {
			causes = append(causes, cause)
		}
		sort.Strings(causes)
		for _, cause := range causes {
			fmt.Fprintf(w, "  %-19s: %d\n", cause, r.Trace.CauseDistribution[cause])
		}
	}
}

// SaveJSON writes the result to path.
func (r *Result) SaveJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results to %s: %w", path, err)
	}
	return nil
}
