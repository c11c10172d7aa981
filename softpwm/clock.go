package softpwm

import "time"

// Clock supplies monotonic time and one-shot timers to the engine.
// The default SystemClock wraps the time package; tests substitute a
// manually-advanced clock.
type Clock interface {
	Now() time.Time
	Until(t time.Time) time.Duration
	// NewTimer returns a one-shot timer that fires after d.
	// d <= 0 fires as soon as possible.
	NewTimer(d time.Duration) Timer
	// HighRes reports whether the timer source has high resolution.
	// A coarse source only degrades firing accuracy; scheduling
	// behaviour is unchanged.
	HighRes() bool
}

// Timer is a rearming one-shot timer. Reset and Stop must only be
// called by the goroutine that consumes C, after the pending firing
// (if any) has been received or the timer stopped.
type Timer interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

type systemClock struct{}

// SystemClock returns the monotonic wall clock backed by the time
// package.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time                  { return time.Now() }
func (systemClock) Until(t time.Time) time.Duration { return time.Until(t) }
func (systemClock) NewTimer(d time.Duration) Timer {
	if d < 0 {
		d = 0
	}
	return &systemTimer{t: time.NewTimer(d)}
}

// Go timers are driven by the runtime's nanosecond-granularity
// scheduler on all supported hosts.
func (systemClock) HighRes() bool { return true }

type systemTimer struct{ t *time.Timer }

func (s *systemTimer) C() <-chan time.Time { return s.t.C }

// Reset safely stops, drains, and rearms the timer.
func (s *systemTimer) Reset(d time.Duration) {
	if !s.t.Stop() {
		drainTimer(s.t.C)
	}
	if d < 0 {
		d = 0
	}
	s.t.Reset(d)
}

func (s *systemTimer) Stop() {
	if !s.t.Stop() {
		drainTimer(s.t.C)
	}
}

func drainTimer(c <-chan time.Time) {
	select {
	case <-c:
	default:
	}
}
