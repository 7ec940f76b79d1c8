package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures all admission and interruption decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelDecisions
}

// SimulationTrace collects decision records during a facility simulation.
type SimulationTrace struct {
	Config        TraceConfig
	Admissions    []AdmissionRecord
	Interruptions []InterruptionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:        config,
		Admissions:    make([]AdmissionRecord, 0),
		Interruptions: make([]InterruptionRecord, 0),
	}
}

// RecordAdmission appends an admission decision record.
// Safe on a nil trace.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	if st == nil {
		return
	}
	st.Admissions = append(st.Admissions, record)
}

// RecordInterruption appends an interruption record.
// Safe on a nil trace.
func (st *SimulationTrace) RecordInterruption(record InterruptionRecord) {
	if st == nil {
		return
	}
	st.Interruptions = append(st.Interruptions, record)
}
