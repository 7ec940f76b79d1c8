package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_WaitResumesAfterDelay(t *testing.T) {
	s := newTestSimulator()
	var woke Wake
	var at float64
	p := s.Spawn("sleeper", func(p *Process) {
		p.Wait(2.5, func(w Wake) {
			woke = w
			at = s.Clock
		})
	})

	runTo(t, s, 10)

	assert.Equal(t, 2.5, at)
	assert.False(t, woke.Interrupted)
	assert.Equal(t, 2.5, woke.Elapsed)
	assert.Equal(t, StateCompleted, p.State())
}

func TestProcess_SpawnOrderIsStartOrder(t *testing.T) {
	s := newTestSimulator()
	var order []string
	for _, name := range []string{"monitor", "intake", "scheduler"} {
		name := name
		s.Spawn(name, func(*Process) { order = append(order, name) })
	}

	runTo(t, s, 0)

	assert.Equal(t, []string{"monitor", "intake", "scheduler"}, order)
}

func TestProcess_InterruptDeliversElapsed(t *testing.T) {
	// GIVEN a process waiting 10 days and a breaker that fires at day 3
	s := newTestSimulator()
	var wakes []Wake
	var wokeAt []float64
	target := s.Spawn("course", func(p *Process) {
		p.Wait(10, func(w Wake) {
			wakes = append(wakes, w)
			wokeAt = append(wokeAt, s.Clock)
		})
	})
	var interruptErr error
	s.Spawn("breaker", func(p *Process) {
		p.Wait(3, func(Wake) { interruptErr = target.Interrupt("breakdown") })
	})

	// WHEN the simulation runs past the original timer
	runTo(t, s, 20)

	// THEN the target woke exactly once, at day 3, flagged as interrupted
	require.NoError(t, interruptErr)
	require.Len(t, wakes, 1)
	assert.True(t, wakes[0].Interrupted)
	assert.Equal(t, "breakdown", wakes[0].Cause)
	assert.Equal(t, 3.0, wakes[0].Elapsed)
	assert.Equal(t, []float64{3}, wokeAt)
	assert.Equal(t, 1, s.Skipped(), "the cancelled timer must be skipped")
}

func TestProcess_InterruptBeatsSameTimeTimer(t *testing.T) {
	// GIVEN a bystander whose timer expires at day 5 and a breaker that
	// interrupts a course at day 5 (the breaker's timer was scheduled first)
	s := newTestSimulator()
	var order []string
	target := s.Spawn("course", func(p *Process) {
		p.Wait(100, func(w Wake) { order = append(order, "course-woke") })
	})
	s.Spawn("breaker", func(p *Process) {
		p.Wait(5, func(Wake) { _ = target.Interrupt("closure") })
	})
	s.Spawn("bystander", func(p *Process) {
		p.Wait(5, func(Wake) { order = append(order, "bystander") })
	})

	runTo(t, s, 10)

	// THEN the interrupt delivery runs before the bystander's timer
	assert.Equal(t, []string{"course-woke", "bystander"}, order)
}

func TestProcess_SecondInterruptSameInstantIsCoalesced(t *testing.T) {
	s := newTestSimulator()
	wakes := 0
	target := s.Spawn("course", func(p *Process) {
		p.Wait(10, func(Wake) { wakes++ })
	})
	var first, second error
	s.Spawn("breaker", func(p *Process) {
		p.Wait(2, func(Wake) {
			first = target.Interrupt("unit 0")
			second = target.Interrupt("unit 1")
		})
	})

	runTo(t, s, 20)

	assert.NoError(t, first)
	assert.ErrorIs(t, second, ErrAlreadyInterrupted)
	assert.Equal(t, 1, wakes)
}

func TestProcess_InterruptErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Simulator) *Process
		want  error
	}{
		{
			name: "completed process",
			setup: func(s *Simulator) *Process {
				return s.Spawn("done", func(*Process) {})
			},
			want: ErrProcessCompleted,
		},
		{
			name: "waiting on capacity",
			setup: func(s *Simulator) *Process {
				c := NewCapacity(s, "slots", 1)
				s.Spawn("holder", func(p *Process) { c.TryAcquire(p, 1) })
				return s.Spawn("waiter", func(p *Process) {
					c.Acquire(p, 1, func(Wake) {})
				})
			},
			want: ErrNotInterruptible,
		},
		{
			name: "waiting on store",
			setup: func(s *Simulator) *Process {
				st := NewStore[int](s, "backlog")
				return s.Spawn("getter", func(p *Process) {
					st.Get(p, func(int) {})
				})
			},
			want: ErrNotInterruptible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSimulator()
			target := tt.setup(s)
			runTo(t, s, 1)
			assert.ErrorIs(t, target.Interrupt("test"), tt.want)
		})
	}
}

func TestProcess_ReWaitAfterInterrupt(t *testing.T) {
	// GIVEN a course that re-waits its remaining time plus one day when interrupted
	s := newTestSimulator()
	remaining := 10.0
	var doneAt float64
	var course *Process
	var segment func(p *Process)
	segment = func(p *Process) {
		p.Wait(remaining, func(w Wake) {
			if w.Interrupted {
				remaining = remaining - w.Elapsed + 1
				segment(p)
				return
			}
			doneAt = s.Clock
		})
	}
	course = s.Spawn("course", segment)
	s.Spawn("breaker", func(p *Process) {
		p.Wait(4, func(Wake) { require.NoError(t, course.Interrupt("breakdown")) })
	})

	runTo(t, s, 100)

	// THEN it finishes one day late
	assert.Equal(t, 11.0, doneAt)
	assert.Equal(t, StateCompleted, course.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "waiting(timer)", StateWaitingTimer.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "state(42)", State(42).String())
}
