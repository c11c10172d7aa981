//go:build linux && !rp2040 && !rp2350

package platform

import (
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPiPinProvider exposes the Raspberry Pi header through memory-mapped
// GPIO. It is not the default on hosts; callers opt in explicitly and
// must Close it when done.
type RPiPinProvider struct {
	openOnce  sync.Once
	openErr   error
	closeOnce sync.Once
}

// NewRPiPinProvider maps the GPIO registers (gpiomem when available).
func NewRPiPinProvider() (*RPiPinProvider, error) {
	p := &RPiPinProvider{}
	p.openOnce.Do(func() { p.openErr = rpio.Open() })
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p, nil
}

func (p *RPiPinProvider) ByNumber(n int) (GPIOHandle, bool) {
	if n < 0 || n > 53 {
		return nil, false
	}
	return &rpiPin{p: rpio.Pin(n), n: n}, true
}

// Close unmaps the GPIO registers.
func (p *RPiPinProvider) Close() error {
	var err error
	p.closeOnce.Do(func() { err = rpio.Close() })
	return err
}

type rpiPin struct {
	p rpio.Pin
	n int
}

func (r *rpiPin) Number() int { return r.n }

func (r *rpiPin) ConfigureOutput(initial bool) error {
	r.p.Output()
	r.Set(initial)
	return nil
}

func (r *rpiPin) Set(level bool) {
	if level {
		r.p.High()
	} else {
		r.p.Low()
	}
}

func (r *rpiPin) Get() bool { return r.p.Read() == rpio.High }
