// services/hal/types.go
package hal

import (
	"context"

	"softpwm-go/errcode"
	"softpwm-go/platform"
	"softpwm-go/types"
)

// ---- Capability & device model ----

// CapAddr identifies a public capability on the bus.
type CapAddr struct {
	Domain string
	Kind   string
	Name   string
}

type CapabilitySpec struct {
	Domain string
	Kind   types.Kind
	Name   string
	Info   types.Info
}

// Device owns claimed resources and exposes generic hooks. Devices must
// not touch the bus; telemetry goes through the injected EventEmitter.
type Device interface {
	ID() string
	// Static capability descriptions (published as retained).
	Capabilities() []CapabilitySpec
	// Init configures the hardware; claimed resources must be released
	// by Close even when Init fails.
	Init(ctx context.Context) error
	// Control handles a verb aimed at one of the device's capabilities.
	Control(addr CapAddr, verb string, payload any) (ControlResult, error)
	// Close releases claimed resources. Safe on any state.
	Close() error
}

// ControlResult is the device's answer to a control verb.
type ControlResult struct {
	OK    bool
	Error errcode.Code // set when OK is false
}

// ---- Device → HAL telemetry (single shape) ----
// An Event normally carries a value update that HAL publishes retained
// to .../value. IsEvent=true publishes non-retained to .../event
// (optionally tagged). A non-empty Err publishes only a degraded
// status.

type Event struct {
	Addr     CapAddr
	Payload  any
	TSms     int64
	Err      string // e.g. "pin_in_use", "low_res_timer"
	IsEvent  bool
	EventTag string
}

// EventEmitter is how devices hand telemetry to the HAL. Emit must be
// non-blocking; false indicates a drop under pressure.
type EventEmitter interface {
	Emit(ev Event) bool
}

// ---- HAL-injected resources ----

type Resources struct {
	Reg *platform.Registry
	Pub EventEmitter // provided by HAL
}

// ---- Builders ----

type BuilderInput struct {
	ID, Type string
	Params   any
	Res      Resources
}

type Builder interface {
	Build(ctx context.Context, in BuilderInput) (Device, error)
}
