// Package scheduler converts wall-clock frame callbacks into a whole number
// of fixed simulation steps.
package scheduler

import "time"

// Default timings.
const (
	DefaultStep     = time.Second / 60
	DefaultMaxDelta = 250 * time.Millisecond
)

// Scheduler is a fixed-timestep accumulator. Each frame callback reports the
// current time to Advance and runs exactly the returned number of steps,
// then renders once.
//
// Frame callbacks are tagged with the token returned by Start. Stop and the
// next Start invalidate older tokens, so stray callbacks scheduled before a
// pause or restart are dropped by Accept.
type Scheduler struct {
	Step     time.Duration // Fixed simulation step
	MaxDelta time.Duration // Largest wall-clock delta credited per callback

	acc     time.Duration
	last    time.Time
	token   uint64
	running bool
}

// New creates a stopped scheduler. Non-positive arguments use the defaults.
func New(step, maxDelta time.Duration) *Scheduler {
	if step <= 0 {
		step = DefaultStep
	}
	if maxDelta <= 0 {
		maxDelta = DefaultMaxDelta
	}
	return &Scheduler{Step: step, MaxDelta: maxDelta}
}

// FromTickRate returns a scheduler stepping tickRate times per second.
func FromTickRate(tickRate int, maxDelta time.Duration) *Scheduler {
	if tickRate <= 0 {
		return New(DefaultStep, maxDelta)
	}
	return New(time.Second/time.Duration(tickRate), maxDelta)
}

// Start begins a new generation and returns its token. The accumulator is
// cleared and the next Advance yields no steps.
func (s *Scheduler) Start() uint64 {
	s.token++
	s.running = true
	s.acc = 0
	s.last = time.Time{}
	return s.token
}

// Stop halts stepping and invalidates the current token.
func (s *Scheduler) Stop() {
	s.token++
	s.running = false
}

// Running reports whether the scheduler is between Start and Stop.
func (s *Scheduler) Running() bool {
	return s.running
}

// Token returns the current generation token.
func (s *Scheduler) Token() uint64 {
	return s.token
}

// Accept reports whether a callback tagged with token is still current.
func (s *Scheduler) Accept(token uint64) bool {
	return s.running && token == s.token
}

// Advance credits the time since the previous callback and returns how many
// fixed steps to run. The delta is clamped to [0, MaxDelta]; the remainder
// below one step carries over.
func (s *Scheduler) Advance(now time.Time) int {
	if !s.running {
		return 0
	}
	if s.last.IsZero() {
		s.last = now
		return 0
	}

	delta := now.Sub(s.last)
	s.last = now
	if delta < 0 {
		delta = 0
	}
	if delta > s.MaxDelta {
		delta = s.MaxDelta
	}

	s.acc += delta
	steps := int(s.acc / s.Step)
	s.acc -= time.Duration(steps) * s.Step
	return steps
}
