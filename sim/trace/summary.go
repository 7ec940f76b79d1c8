package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalAdmissions     int
	BypassedCount       int
	BackloggedCount     int
	ScheduledCount      int
	DeliveredInterrupts int
	SkippedInterrupts   int
	SkipReasons         map[string]int // reason → count of skipped interrupts
	CauseDistribution   map[string]int // cause → count of delivered interrupts
	MeanScheduledWait   float64
	MaxScheduledWait    float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		SkipReasons:       make(map[string]int),
		CauseDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	totalWait := 0.0
	for _, a := range st.Admissions {
		switch a.Route {
		case RouteBypass:
			summary.BypassedCount++
			summary.TotalAdmissions++
		case RouteBacklog:
			summary.BackloggedCount++
		case RouteScheduled:
			summary.ScheduledCount++
			summary.TotalAdmissions++
			totalWait += a.Wait
			if a.Wait > summary.MaxScheduledWait {
				summary.MaxScheduledWait = a.Wait
			}
		}
	}
	if summary.ScheduledCount > 0 {
		summary.MeanScheduledWait = totalWait / float64(summary.ScheduledCount)
	}

	for _, r := range st.Interruptions {
		if r.Delivered {
			summary.DeliveredInterrupts++
			summary.CauseDistribution[r.Cause]++
		} else {
			summary.SkippedInterrupts++
			summary.SkipReasons[r.Reason]++
		}
	}

	return summary
}
