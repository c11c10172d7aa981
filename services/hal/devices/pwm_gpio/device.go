// Package pwm_gpio exposes a software PWM channel on a plain GPIO line
// as a HAL capability. The timing engine lives in softpwm; this device
// is the glue that claims the pin, forwards the control verbs and
// publishes state.
package pwm_gpio

import (
	"context"
	"sync"
	"time"

	"softpwm-go/errcode"
	"softpwm-go/platform"
	"softpwm-go/services/hal"
	"softpwm-go/softpwm"
	"softpwm-go/types"
	"softpwm-go/x/mathx"
	"softpwm-go/x/ramp"
	"softpwm-go/x/timex"
)

type Device struct {
	id   string
	pinN int
	pin  platform.GPIOHandle
	reg  *platform.Registry
	pub  hal.EventEmitter
	dom  string
	name string
	addr hal.CapAddr

	params Params
	ch     *softpwm.Channel

	// Ramp state
	mu         sync.Mutex
	rampCancel chan struct{}
	rampAlive  bool
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []hal.CapabilitySpec {
	return []hal.CapabilitySpec{{
		Domain: d.dom,
		Kind:   types.KindPWM,
		Name:   d.name,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        "pwm_gpio",
			Detail: types.SoftPWMInfo{
				Pin:      d.pinN,
				Inverted: d.params.Inverted,
				DutyNs:   d.params.DutyNs,
				PeriodNs: d.params.PeriodNs,
				HighRes:  softpwm.SystemClock().HighRes(),
			},
		},
	}}
}

func (d *Device) Init(ctx context.Context) error {
	// Park the line at the inactive level before the channel takes over.
	if err := d.pin.ConfigureOutput(d.params.Inverted); err != nil {
		return err
	}

	d.addr = hal.CapAddr{Domain: d.dom, Kind: string(types.KindPWM), Name: d.name}

	d.ch = softpwm.New(d.pin,
		softpwm.WithInverted(d.params.Inverted),
		softpwm.WithWarn(func(msg string) {
			println("[pwm_gpio]", d.id+":", msg)
			d.pub.Emit(hal.Event{
				Addr: d.addr, Payload: msg, TSms: timex.NowMs(),
				IsEvent: true, EventTag: "warning",
			})
		}),
	)
	if d.params.PeriodNs > 0 {
		d.ch.Configure(d.clampDuty(d.params.DutyNs, d.params.PeriodNs), d.params.PeriodNs)
	}
	if d.params.Enable {
		if err := d.ch.Enable(); err != nil {
			return err
		}
	}
	d.emitValue()
	return nil
}

// Close stops any active ramp, forces the channel off and releases the
// claimed pin. Safe on a device whose Init never ran or failed.
func (d *Device) Close() error {
	d.stopRamp()
	if d.ch != nil {
		d.ch.Close()
	}
	if d.reg != nil {
		d.reg.ReleasePin(d.id, d.pinN)
	}
	return nil
}

func (d *Device) Control(_ hal.CapAddr, verb string, payload any) (hal.ControlResult, error) {
	switch verb {
	case "configure":
		p, code := hal.As[types.SoftPWMConfigure](payload)
		if code != "" {
			return hal.ControlResult{OK: false, Error: code}, nil
		}
		d.ch.Configure(d.clampDuty(p.DutyNs, p.PeriodNs), p.PeriodNs)
		d.emitValue()
		return hal.ControlResult{OK: true}, nil

	case "set_polarity":
		p, code := hal.As[types.SoftPWMPolarity](payload)
		if code != "" {
			return hal.ControlResult{OK: false, Error: code}, nil
		}
		d.ch.SetPolarity(p.Inverted)
		d.emitValue()
		return hal.ControlResult{OK: true}, nil

	case "enable":
		if err := d.ch.Enable(); err != nil {
			return hal.ControlResult{OK: false, Error: errcode.Of(err)}, nil
		}
		d.emitValue()
		return hal.ControlResult{OK: true}, nil

	case "disable":
		d.stopRamp()
		d.ch.Disable()
		d.emitValue()
		return hal.ControlResult{OK: true}, nil

	case "ramp":
		p, code := hal.As[types.SoftPWMRamp](payload)
		if code != "" {
			return hal.ControlResult{OK: false, Error: code}, nil
		}
		if !d.startRamp(p) {
			return hal.ControlResult{OK: false, Error: errcode.Busy}, nil
		}
		return hal.ControlResult{OK: true}, nil

	case "stop_ramp":
		d.stopRamp()
		return hal.ControlResult{OK: true}, nil

	case "read":
		d.emitValue()
		return hal.ControlResult{OK: true}, nil

	default:
		return hal.ControlResult{OK: false, Error: errcode.Unsupported}, nil
	}
}

// clampDuty keeps duty within the period. The softpwm core stores
// whatever it is given; the policy of rejecting duty > period lives
// here, at the driver surface.
func (d *Device) clampDuty(dutyNs, periodNs uint64) uint64 {
	return mathx.Clamp(dutyNs, 0, periodNs)
}

func (d *Device) emitValue() {
	on, off := d.ch.Timing()
	d.pub.Emit(hal.Event{
		Addr: d.addr,
		Payload: types.SoftPWMValue{
			Running:  d.ch.Running(),
			DutyNs:   on,
			PeriodNs: on + off,
			Inverted: d.ch.Inverted(),
		},
		TSms: timex.NowMs(),
	})
}

// startRamp moves the duty linearly to the target. One ramp at a time;
// a second request is rejected until the first finishes or is stopped.
func (d *Device) startRamp(p types.SoftPWMRamp) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rampAlive {
		return false
	}
	cancel := make(chan struct{})
	d.rampCancel = cancel
	d.rampAlive = true

	on, off := d.ch.Timing()
	period := on + off

	go func() {
		tick := func(dur time.Duration) bool {
			select {
			case <-cancel:
				return false
			case <-time.After(dur):
				return true
			}
		}
		ramp.StartLinear(on, p.ToNs, period, p.DurationMs, p.Steps, tick, func(v uint64) {
			d.ch.Configure(v, period)
			d.emitValue()
		})
		d.mu.Lock()
		if d.rampCancel == cancel {
			d.rampAlive = false
			d.rampCancel = nil
		}
		d.mu.Unlock()
	}()
	return true
}

func (d *Device) stopRamp() {
	d.mu.Lock()
	if d.rampAlive && d.rampCancel != nil {
		close(d.rampCancel)
		d.rampCancel = nil
		d.rampAlive = false
	}
	d.mu.Unlock()
}
