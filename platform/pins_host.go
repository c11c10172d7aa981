//go:build !rp2040 && !rp2350

package platform

import "sync"

// FakePin implements GPIOHandle for host-side tests and demos.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	writes  int
}

func (p *FakePin) Number() int { return p.number }

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.writes++
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

// Writes reports how many Set calls the pin has seen (tests).
func (p *FakePin) Writes() int {
	p.mu.RLock()
	n := p.writes
	p.mu.RUnlock()
	return n
}

// HostPinProvider returns stable *FakePin instances per number.
type HostPinProvider struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *HostPinProvider) ByNumber(n int) (GPIOHandle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = &FakePin{number: n}
		f.pins[n] = p
	}
	return p, true
}

// Get exposes the underlying *FakePin for tests.
func (f *HostPinProvider) Get(n int) (*FakePin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	return p, ok
}

// DefaultProvider provides the host GPIO backend.
func DefaultProvider() PinProvider {
	return &HostPinProvider{pins: make(map[int]*FakePin)}
}
