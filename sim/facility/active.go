package facility

import "sort"

// ActiveTreatments maps patient id to the running course. It is the only
// way breakdowns and closures find interrupt targets, so entries are removed
// as soon as a course completes.
type ActiveTreatments struct {
	courses map[int]*Course
}

// NewActiveTreatments creates an empty table.
func NewActiveTreatments() *ActiveTreatments {
	return &ActiveTreatments{courses: make(map[int]*Course)}
}

// Add registers c under its patient id.
func (a *ActiveTreatments) Add(c *Course) {
	a.courses[c.patient.ID] = c
}

// Remove deletes the entry for id, if present.
func (a *ActiveTreatments) Remove(id int) {
	delete(a.courses, id)
}

// Get returns the course for id.
func (a *ActiveTreatments) Get(id int) (*Course, bool) {
	c, ok := a.courses[id]
	return c, ok
}

// Len returns the number of running courses.
func (a *ActiveTreatments) Len() int {
	return len(a.courses)
}

// Snapshot returns the active patient ids in ascending order. Sorting keeps
// random target selection independent of map iteration order.
func (a *ActiveTreatments) Snapshot() []int {
	ids := make([]int, 0, len(a.courses))
	for id := range a.courses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
