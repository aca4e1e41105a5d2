package sim

import (
	"fmt"
	"sync/atomic"
)

// VTimeInSec defines simulation time in seconds.
type VTimeInSec float64

// SimTime pairs the elapsed simulation time with the number of completed
// ticks. Both are non-negative and advance together.
type SimTime struct {
	ElapsedSeconds VTimeInSec
	TickCount      uint64
}

// A Clock owns the simulation time. The time advances by exactly one fixed
// step per Advance call; there is no skipping and no rollback.
type Clock struct {
	step VTimeInSec
	tick atomic.Uint64
}

// NewClock creates a Clock with a fixed, positive step size.
func NewClock(step VTimeInSec) (*Clock, error) {
	if step <= 0 {
		return nil, fmt.Errorf(
			"%w: step size must be positive, got %g",
			ErrInvalidArgument, step)
	}

	return &Clock{step: step}, nil
}

// StepSize returns the fixed step size.
func (c *Clock) StepSize() VTimeInSec {
	return c.step
}

// Advance increments the tick count by one and returns the new time. The
// elapsed time is derived as tick × step, so repeated advancing does not
// accumulate floating-point error.
func (c *Clock) Advance() SimTime {
	tick := c.tick.Add(1)

	return SimTime{
		ElapsedSeconds: VTimeInSec(tick) * c.step,
		TickCount:      tick,
	}
}

// Now returns the current time.
func (c *Clock) Now() SimTime {
	tick := c.tick.Load()

	return SimTime{
		ElapsedSeconds: VTimeInSec(tick) * c.step,
		TickCount:      tick,
	}
}
