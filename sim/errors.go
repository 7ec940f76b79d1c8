package sim

import "errors"

var (
	// ErrCapacityInvariant reports that a Capacity left [0, total] or that
	// available plus held units no longer equals total. It is fatal.
	ErrCapacityInvariant = errors.New("capacity invariant violated")

	// ErrClockRegression reports an event popped earlier than the clock.
	ErrClockRegression = errors.New("clock moved backward")

	// ErrProcessCompleted is returned when interrupting a finished process.
	ErrProcessCompleted = errors.New("process already completed")

	// ErrAlreadyInterrupted is returned when an interrupt is still pending
	// delivery to the target. The second interrupt is dropped.
	ErrAlreadyInterrupted = errors.New("process already interrupted")

	// ErrNotInterruptible is returned when the target is not suspended on a timer.
	ErrNotInterruptible = errors.New("process not waiting on a timer")
)
