package platform

import (
	"sync"

	"tinygo.org/x/drivers"
)

// ExpanderPin drives one line of a PCF8574-class quasi-bidirectional
// 8-bit I²C expander as a GPIOHandle. Writes are port-wide, so a shadow
// byte keeps the other seven lines stable. The part has no registers:
// each transaction is the raw port byte.
type ExpanderPin struct {
	mu     sync.Mutex
	bus    drivers.I2C
	addr   uint16
	line   uint8 // 0..7
	shadow uint8
	err    error
}

// NewExpanderPin returns a handle for one expander line. All lines
// start high (the part's power-on state).
func NewExpanderPin(bus drivers.I2C, addr uint16, line uint8) *ExpanderPin {
	return &ExpanderPin{bus: bus, addr: addr, line: line & 7, shadow: 0xFF}
}

func (p *ExpanderPin) Number() int { return int(p.line) }

func (p *ExpanderPin) ConfigureOutput(initial bool) error {
	p.Set(initial)
	return p.Err()
}

func (p *ExpanderPin) Set(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bit := uint8(1) << p.line
	if level {
		p.shadow |= bit
	} else {
		p.shadow &^= bit
	}
	if err := p.bus.Tx(p.addr, []byte{p.shadow}, nil); err != nil {
		p.err = err
	}
}

func (p *ExpanderPin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shadow&(1<<p.line) != 0
}

// Err reports the last transaction error, if any. Line I/O failures are
// out of scope for the PWM core; callers that care poll here.
func (p *ExpanderPin) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
