// Package softpwm emulates a hardware PWM output by toggling a single
// digital line from a self-rescheduling timer. It suits platforms
// without a dedicated PWM peripheral: any GPIO-capable output becomes a
// PWM channel, trading timing precision for generality.
//
// A Channel owns exactly one output line. Configuration, polarity,
// enable and disable are safe to call concurrently with each other and
// with the running timer; a single lock serialises every access to the
// channel state, including the pin writes made by the timer callback.
package softpwm

import (
	"sync"
	"time"

	"softpwm-go/errcode"
)

// Channel is one software PWM instance.
type Channel struct {
	mu sync.Mutex

	out   Output
	clock Clock
	warn  func(msg string)

	onTime  uint64 // ns spent in the active phase
	offTime uint64 // ns spent in the inactive phase

	inverted    bool // active phase drives the line low
	pinAsserted bool // which phase the timer is currently in
	running     bool // timer engine scheduled

	eng *engine
}

// Option configures a Channel at request time.
type Option func(*Channel)

// WithClock substitutes the timer source (tests, platforms with their
// own tick source).
func WithClock(c Clock) Option {
	return func(ch *Channel) { ch.clock = c }
}

// WithInverted sets the initial polarity, so the line is parked at the
// correct inactive level from the start.
func WithInverted(inverted bool) Option {
	return func(ch *Channel) { ch.inverted = inverted }
}

// WithWarn installs a hook for non-fatal diagnostics (coarse timer
// source). The hook is called synchronously from New.
func WithWarn(fn func(msg string)) Option {
	return func(ch *Channel) { ch.warn = fn }
}

// New requests a channel over out: polarity normal (unless overridden),
// stopped, line driven to the inactive level. The channel owns out
// until Close.
func New(out Output, opts ...Option) *Channel {
	c := &Channel{out: out, clock: SystemClock()}
	for _, o := range opts {
		o(c)
	}
	if !c.clock.HighRes() && c.warn != nil {
		c.warn("high resolution timers unavailable, restricting to low resolution")
	}
	c.mu.Lock()
	c.driveInactive()
	c.mu.Unlock()
	return c
}

// Configure sets the duty and period, in nanoseconds. The values are
// stored as given: callers are responsible for periodNs >= dutyNs.
// There is no side effect on the line or the current phase; the new
// timing is picked up at the next phase boundary. Never fails.
func (c *Channel) Configure(dutyNs, periodNs uint64) {
	c.mu.Lock()
	c.onTime = dutyNs
	c.offTime = periodNs - dutyNs
	c.mu.Unlock()
}

// SetPolarity selects whether the active phase drives the line low
// (inverted) or high. The line is not re-driven immediately; the new
// polarity applies at the next toggle. Never fails.
func (c *Channel) SetPolarity(inverted bool) {
	c.mu.Lock()
	c.inverted = inverted
	c.mu.Unlock()
}

// Enable starts the timer engine. The first firing happens immediately,
// beginning the active phase with no initial idle gap. Returns
// errcode.AlreadyRunning, with state unchanged, when the engine is
// already scheduled.
func (c *Channel) Enable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return errcode.AlreadyRunning
	}
	c.running = true
	c.eng = newEngine(c.clock, c.fire)
	c.eng.start()
	return nil
}

// Disable stops the timer engine and unconditionally drives the line to
// the inactive level. Once Disable returns, no further toggling occurs
// until the next Enable: the engine is cancelled synchronously,
// blocking until any in-flight firing has completed. Calling Disable on
// a stopped channel is a no-op, not an error.
func (c *Channel) Disable() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	// Clear running first: an in-flight firing that wins the lock
	// before cancel observes it and stands down without toggling.
	c.running = false
	eng := c.eng
	c.eng = nil
	c.mu.Unlock()

	eng.cancel()

	c.mu.Lock()
	c.driveInactive()
	c.mu.Unlock()
}

// Close releases the channel: forces Disable (including the final drive
// to the inactive level) and gives up the output. The channel must not
// be used afterwards.
func (c *Channel) Close() {
	c.Disable()
}

// Running reports whether the timer engine is currently scheduled.
func (c *Channel) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Timing returns the stored on/off durations in nanoseconds.
func (c *Channel) Timing() (onNs, offNs uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onTime, c.offTime
}

// Inverted reports the current polarity.
func (c *Channel) Inverted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverted
}

// HighRes reports whether the channel's timer source is high
// resolution.
func (c *Channel) HighRes() bool { return c.clock.HighRes() }

// fire is the timer engine callback: flip the phase, drive the line,
// and report how long the new phase lasts. The on/off durations are
// read here, at rescheduling time, so mid-cycle Configure calls take
// effect at the next phase boundary.
func (c *Channel) fire() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0, false
	}
	if !c.pinAsserted {
		c.out.Set(c.activeLevel())
		c.pinAsserted = true
		return time.Duration(c.onTime), true
	}
	c.out.Set(c.inactiveLevel())
	c.pinAsserted = false
	return time.Duration(c.offTime), true
}

func (c *Channel) activeLevel() bool   { return !c.inverted }
func (c *Channel) inactiveLevel() bool { return c.inverted }

// driveInactive parks the line at the inactive level. Caller holds the
// lock.
func (c *Channel) driveInactive() {
	c.out.Set(c.inactiveLevel())
	c.pinAsserted = false
}
