package systems

import (
	"errors"

	"github.com/pthm-cable/ecosim/components"
)

// ErrClockDone is returned when a finished clock is ticked.
var ErrClockDone = errors.New("clock has reached its duration")

// TimeContext is the calendar position handed to each step.
type TimeContext struct {
	Elapsed  int // intervals since the start of the trial
	Interval int // size of one step
}

// Step returns the number of whole steps elapsed.
func (t TimeContext) Step() int {
	interval := t.Interval
	if interval <= 0 {
		interval = components.Month
	}
	return t.Elapsed / interval
}

// Year returns the number of whole years elapsed. The twelfth step of a
// year already reports the next year while Month still reports December.
func (t TimeContext) Year() int {
	return t.Step() / components.MonthsPerYear
}

// Month returns the calendar month, 1-12. A step count divisible by twelve
// is December.
func (t TimeContext) Month() int {
	m := t.Step() % components.MonthsPerYear
	if m == 0 {
		return 12
	}
	return m
}

// Season returns the season of the current month.
func (t TimeContext) Season() components.Season {
	return components.SeasonOf(t.Month())
}

// ClockState is the lifecycle state of a Clock.
type ClockState uint8

const (
	ClockIdle ClockState = iota
	ClockRunning
	ClockDone
)

func (s ClockState) String() string {
	switch s {
	case ClockIdle:
		return "idle"
	case ClockRunning:
		return "running"
	case ClockDone:
		return "done"
	default:
		return "unknown"
	}
}

// Clock drives the step loop of one trial.
//
//	Idle --Tick--> Running --Tick (elapsed >= duration)--> Done
//	Done/Running --Reset--> Idle
type Clock struct {
	duration int
	interval int
	elapsed  int
	state    ClockState
}

// NewClock creates an idle clock that finishes after duration intervals.
func NewClock(duration int) *Clock {
	return &Clock{duration: duration, interval: components.Month}
}

// Tick advances the clock one interval and returns the new time context.
func (c *Clock) Tick() (TimeContext, error) {
	if c.state == ClockDone || c.elapsed >= c.duration {
		c.state = ClockDone
		return c.Now(), ErrClockDone
	}

	c.elapsed += c.interval
	c.state = ClockRunning
	if c.elapsed >= c.duration {
		c.state = ClockDone
	}
	return c.Now(), nil
}

// Reset returns the clock to Idle with no elapsed time.
func (c *Clock) Reset() {
	c.elapsed = 0
	c.state = ClockIdle
}

// Now returns the current time context.
func (c *Clock) Now() TimeContext {
	return TimeContext{Elapsed: c.elapsed, Interval: c.interval}
}

// State returns the lifecycle state.
func (c *Clock) State() ClockState { return c.state }

// Done reports whether the clock has reached its duration.
func (c *Clock) Done() bool { return c.state == ClockDone }

// Duration returns the configured duration in intervals.
func (c *Clock) Duration() int { return c.duration }
