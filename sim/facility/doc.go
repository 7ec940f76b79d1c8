// Package facility models patient flow through a radiotherapy centre on top
// of the sim kernel.
//
// A Facility owns one Simulator, a Capacity of treatment slots
// (units x hours/day x sessions/hour), a FIFO backlog Store and the table of
// active treatment courses. Start spawns the domain processes:
//   - monitor: samples backlog length and on-treatment count once a day
//   - intake: refers WeeklyPatients new patients at every week boundary
//   - treatment-scheduler: admits backlogged patients one at a time, FIFO
//   - course_N: one per admitted patient; holds a slot until treatment ends
//   - breakdown_N: one per unit; interrupts random courses once a week
//   - closure: interrupts every course each ClosurePeriodDays
//
// An interrupted course resumes with max(1, remaining - elapsed + PenaltyDays)
// days left. Run returns a Result; Exporter turns it into Prometheus metrics.
package facility
