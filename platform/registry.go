// Package platform supplies the board-facing resources the HAL hands to
// devices: GPIO handles behind a claim/release registry, plus output
// backends for hosts, RP2 boards, Raspberry Pi headers and I²C
// expanders.
package platform

import (
	"sync"

	"softpwm-go/errcode"
)

// GPIOHandle is an exclusively-owned output-capable pin.
type GPIOHandle interface {
	Number() int
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
}

// PinProvider resolves pin numbers to handles for one board.
type PinProvider interface {
	ByNumber(n int) (GPIOHandle, bool)
}

// Registry hands out pins with exclusive ownership per device. A
// second claim on the same pin fails with errcode.PinInUse until the
// owner releases it.
type Registry struct {
	mu     sync.Mutex
	pins   PinProvider
	owners map[int]string // pin -> devID
}

func NewRegistry(pins PinProvider) *Registry {
	return &Registry{pins: pins, owners: map[int]string{}}
}

// ClaimPin acquires exclusive ownership of a pin for devID. Nothing is
// left behind on failure.
func (r *Registry) ClaimPin(devID string, pin int) (GPIOHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.pins.ByNumber(pin)
	if !ok {
		return nil, errcode.UnknownPin
	}
	if owner, claimed := r.owners[pin]; claimed && owner != devID {
		return nil, errcode.PinInUse
	}
	r.owners[pin] = devID
	return h, nil
}

// ReleasePin gives the pin back. Releasing a pin devID does not own is
// a no-op.
func (r *Registry) ReleasePin(devID string, pin int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owners[pin] == devID {
		delete(r.owners, pin)
	}
}
