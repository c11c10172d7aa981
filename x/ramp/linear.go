package ramp

import (
	"time"

	"softpwm-go/x/mathx"
)

// Step sets the new duty in [0..top] nanoseconds.
type Step func(dutyNs uint64)

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// StartLinear runs a synchronous (caller-driven) integer ramp from cur
// to 'to'. Call it from a goroutine and provide Tick to handle timing &
// cancellation. steps==0 or durationMs==0 snaps to 'to'. The error
// accumulator keeps the steps evenly spread without floating point.
func StartLinear(cur, to, top uint64, durationMs uint32, steps uint16, tick Tick, set Step) {
	to = mathx.Min(to, top)
	if steps == 0 || durationMs == 0 {
		set(to)
		return
	}
	d := int64(to) - int64(cur)
	st := int64(steps)
	acc := int64(0)
	pos := int64(cur)
	stepDurMs := durationMs / uint32(steps)
	if stepDurMs == 0 {
		stepDurMs = 1
	}
	stepDur := time.Duration(stepDurMs) * time.Millisecond

	for i := uint16(1); i < steps; i++ {
		if !tick(stepDur) {
			return
		}
		acc += d
		inc := acc / st
		if inc != 0 {
			acc -= inc * st
			pos = mathx.Clamp(pos+inc, 0, int64(top))
			set(uint64(pos))
		}
	}
	if !tick(stepDur) {
		return
	}
	set(to)
}
