package facility

import (
	"fmt"
	"math/rand"
)

// Patient is one person referred for a course of treatment.
type Patient struct {
	ID           int     // unique, assigned in arrival order
	RequiredDays int     // sampled treatment length in working days
	ArrivalTime  float64 // day the patient was referred

	// Set as the patient moves through the facility.
	Admitted      bool
	AdmittedAt    float64 // day the course started
	Bypassed      bool    // admitted by intake without passing through the backlog
	Interruptions int     // interrupts absorbed by the course
	PenaltyDays   int     // days added by those interrupts
	Completed     bool
	CompletedAt   float64
}

// Wait returns the time between referral and the start of treatment.
func (p *Patient) Wait() float64 {
	return p.AdmittedAt - p.ArrivalTime
}

// TimeInTreatment returns the elapsed time between admission and completion.
func (p *Patient) TimeInTreatment() float64 {
	return p.CompletedAt - p.AdmittedAt
}

func (p *Patient) String() string {
	return fmt.Sprintf("patient_%d(%dd)", p.ID, p.RequiredDays)
}

// durationSampler draws treatment lengths from the weighted 1..6 week buckets.
type durationSampler struct {
	cumulative []float64
}

func newDurationSampler(weights []float64) *durationSampler {
	cum := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		cum[i] = total
	}
	return &durationSampler{cumulative: cum}
}

// Sample returns a treatment length in working days.
func (d *durationSampler) Sample(rng *rand.Rand) int {
	u := rng.Float64() * d.cumulative[len(d.cumulative)-1]
	for i, c := range d.cumulative {
		if u < c {
			return (i + 1) * DaysPerWeek
		}
	}
	// u landed on the upper edge through rounding; use the last non-empty bucket
	for i := len(d.cumulative) - 1; i > 0; i-- {
		if d.cumulative[i] > d.cumulative[i-1] {
			return (i + 1) * DaysPerWeek
		}
	}
	return DaysPerWeek
}
