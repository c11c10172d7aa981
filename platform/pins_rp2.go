//go:build rp2040 || rp2350

package platform

import (
	"machine"
)

// rp2Pin adapts machine.Pin to GPIOHandle.
type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) Number() int { return r.n }

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }

// rp2PinProvider exposes the RP2 GPIO bank by number.
type rp2PinProvider struct{}

func (rp2PinProvider) ByNumber(n int) (GPIOHandle, bool) {
	if n < 0 || n > 29 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

// DefaultProvider provides the RP2 GPIO backend.
func DefaultProvider() PinProvider { return rp2PinProvider{} }
