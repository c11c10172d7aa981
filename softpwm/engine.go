package softpwm

import "time"

// engine is the self-rescheduling timer that drives one channel. Each
// firing invokes the callback, which toggles the phase and reports how
// long the new phase lasts; the engine then rearms at expected+interval
// rather than now+interval, so latency in one firing does not shift
// every later phase boundary.
type engine struct {
	clock Clock

	// fire toggles the channel phase. ok=false tells the engine to
	// stand down (the channel was disabled mid-flight).
	fire func() (next time.Duration, ok bool)

	stop chan struct{}
	done chan struct{}
}

func newEngine(clock Clock, fire func() (time.Duration, bool)) *engine {
	return &engine{
		clock: clock,
		fire:  fire,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// start arms the engine to fire immediately, so the first phase begins
// without an initial idle gap.
func (e *engine) start() { go e.run() }

func (e *engine) run() {
	defer close(e.done)

	// The first firing is due now; later deadlines advance from this
	// expected time, never from the observed firing time.
	next := e.clock.Now()
	t := e.clock.NewTimer(0)
	defer t.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-t.C():
			d, ok := e.fire()
			if !ok {
				return
			}
			next = next.Add(d)
			t.Reset(e.clock.Until(next))
		}
	}
}

// cancel stops the engine and blocks until no further firing will
// occur. Call at most once per engine.
func (e *engine) cancel() {
	close(e.stop)
	<-e.done
}
