// services/hal/devices/pwm_gpio/builder.go
package pwm_gpio

import (
	"context"

	"softpwm-go/errcode"
	"softpwm-go/services/hal"
	"softpwm-go/x/strx"
)

func init() { hal.RegisterBuilder("pwm_gpio", builder{}) }

type Params struct {
	Pin      int    `json:"pin"`
	Inverted bool   `json:"inverted,omitempty"`
	DutyNs   uint64 `json:"duty_ns,omitempty"`
	PeriodNs uint64 `json:"period_ns,omitempty"`
	Enable   bool   `json:"enable,omitempty"` // start toggling right after init
	Domain   string `json:"domain,omitempty"`
	Name     string `json:"name,omitempty"`
}

type builder struct{}

func (builder) Build(ctx context.Context, in hal.BuilderInput) (hal.Device, error) {
	p, ok := in.Params.(Params)
	if !ok || p.Pin < 0 {
		return nil, errcode.InvalidParams
	}
	pin, err := in.Res.Reg.ClaimPin(in.ID, p.Pin)
	if err != nil {
		return nil, err
	}
	return &Device{
		id:     in.ID,
		pinN:   p.Pin,
		pin:    pin,
		reg:    in.Res.Reg,
		pub:    in.Res.Pub,
		dom:    strx.Coalesce(p.Domain, "io"),
		name:   strx.Coalesce(p.Name, in.ID),
		params: p,
	}, nil
}
