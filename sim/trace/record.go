// Package trace provides decision-trace recording for admission and
// interruption analysis.
// This package has no dependencies on sim/ or sim/facility/; it stores pure data types.
package trace

// Admission routes recorded in AdmissionRecord.Route.
const (
	RouteBypass    = "bypass"    // intake found a free slot
	RouteBacklog   = "backlog"   // appended to the backlog
	RouteScheduled = "scheduled" // admitted by the treatment scheduler from the backlog
)

// AdmissionRecord captures a single admission decision.
type AdmissionRecord struct {
	PatientID int
	Clock     float64
	Route     string
	Wait      float64 // days since arrival; 0 for backlog routing
}

// InterruptionRecord captures one attempt to interrupt a treatment course.
type InterruptionRecord struct {
	PatientID int
	Clock     float64
	Cause     string // "breakdown unit N" or "closure"
	Delivered bool
	Reason    string // why an undelivered interrupt was skipped
}
