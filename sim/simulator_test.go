package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_SameTimeEventsRunInSchedulingOrder(t *testing.T) {
	// GIVEN three normal events scheduled for the same time
	s := newTestSimulator()
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		s.Schedule(1, PriorityNormal, name, func() { order = append(order, name) })
	}

	// WHEN the simulation runs
	runTo(t, s, 10)

	// THEN they fire in the order they were scheduled
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 1.0, s.Clock)
}

func TestSimulator_UrgentRunsBeforeNormalAtSameTime(t *testing.T) {
	s := newTestSimulator()
	var order []string
	s.Schedule(2, PriorityNormal, "timer", func() { order = append(order, "timer") })
	s.Schedule(1, PriorityNormal, "setup", func() {
		s.Schedule(1, PriorityUrgent, "urgent", func() { order = append(order, "urgent") })
	})

	runTo(t, s, 10)

	assert.Equal(t, []string{"urgent", "timer"}, order)
}

func TestSimulator_RunUntil_HorizonInclusive(t *testing.T) {
	s := newTestSimulator()
	fired := 0
	for _, d := range []float64{1, 2, 3} {
		s.Schedule(d, PriorityNormal, "tick", func() { fired++ })
	}

	runTo(t, s, 2)

	assert.Equal(t, 2, fired)
	assert.Equal(t, 2.0, s.Clock)
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, 2, s.Executed())
}

func TestSimulator_CancelledEventIsSkipped(t *testing.T) {
	s := newTestSimulator()
	fired := false
	ev := s.Schedule(1, PriorityNormal, "cancel-me", func() { fired = true })
	ev.Cancel()

	runTo(t, s, 5)

	assert.False(t, fired)
	assert.True(t, ev.Cancelled())
	assert.Equal(t, 1, s.Skipped())
	assert.Equal(t, 0.0, s.Clock, "skipped events must not advance the clock")
}

func TestSimulator_NegativeDelayPanics(t *testing.T) {
	s := newTestSimulator()
	assert.Panics(t, func() {
		s.Schedule(-0.5, PriorityNormal, "bad", func() {})
	})
}

func TestSimulator_ClockNeverMovesBackward(t *testing.T) {
	// GIVEN events that schedule further events at mixed delays
	s := newTestSimulator()
	rng := s.RNG().ForSubsystem("test")
	var spawn func(depth int)
	spawn = func(depth int) {
		if depth == 0 {
			return
		}
		for i := 0; i < 3; i++ {
			pri := PriorityNormal
			if rng.Intn(2) == 0 {
				pri = PriorityUrgent
			}
			s.Schedule(float64(rng.Intn(4)), pri, "nested", func() { spawn(depth - 1) })
		}
	}
	spawn(5)

	var regressions int
	s.OnAdvance = func(prev, now float64) {
		if now < prev {
			regressions++
		}
	}

	// WHEN run to completion
	runTo(t, s, 1e9)

	// THEN the clock was non-decreasing at every step
	assert.Zero(t, regressions)
	assert.Zero(t, s.Pending())
}

func TestSimulator_FailHaltsRun(t *testing.T) {
	s := newTestSimulator()
	boom := errors.New("boom")
	laterRan := false
	s.Schedule(1, PriorityNormal, "fail", func() { s.Fail(boom) })
	s.Schedule(2, PriorityNormal, "later", func() { laterRan = true })

	err := s.RunUntil(context.Background(), 10)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, laterRan)
	assert.Equal(t, 1.0, s.Clock)
}

func TestSimulator_FailKeepsFirstError(t *testing.T) {
	s := newTestSimulator()
	first := errors.New("first")
	s.Fail(first)
	s.Fail(errors.New("second"))
	assert.Same(t, first, s.Err())
}

func TestSimulator_ContextCancellation(t *testing.T) {
	s := newTestSimulator()
	ctx, cancel := context.WithCancel(context.Background())
	s.Schedule(1, PriorityNormal, "cancel", cancel)
	s.Schedule(2, PriorityNormal, "never", func() { t.Error("event after cancellation ran") })

	err := s.RunUntil(ctx, 10)

	assert.ErrorIs(t, err, context.Canceled)
}
