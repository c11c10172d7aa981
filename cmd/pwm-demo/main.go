// pwm-demo drives a software PWM channel on a host fake pin and prints
// the state it observes on the bus. Handy for eyeballing the service
// without hardware.
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"softpwm-go/bus"
	"softpwm-go/platform"
	"softpwm-go/services/hal"
	"softpwm-go/services/hal/devices/pwm_gpio"
	"softpwm-go/types"
)

func main() {
	println("boot")

	b := bus.NewBus(32)
	reg := platform.NewRegistry(platform.DefaultProvider())
	h := hal.NewHAL(b.NewConnection("hal"), hal.Resources{Reg: reg})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go h.Run(ctx)

	c := b.NewConnection("demo")
	defer c.Disconnect()

	stateSub := c.Subscribe(bus.T("hal", "state"))
	valueSub := c.Subscribe(bus.T("hal", "cap", "io", "pwm", "demo0", "value"))

	// 100 Hz, 30% duty on pin 2.
	c.Publish(c.NewMessage(bus.T("config", "hal"), types.HALConfig{
		Devices: []types.HALDevice{{
			ID:   "demo0",
			Type: "pwm_gpio",
			Params: pwm_gpio.Params{
				Pin:      2,
				DutyNs:   3_000_000,
				PeriodNs: 10_000_000,
				Enable:   true,
				Name:     "demo0",
			},
		}},
	}, true))

	addr := hal.CapAddr{Domain: "io", Kind: string(types.KindPWM), Name: "demo0"}

	// Ramp the duty up after a couple of seconds.
	go func() {
		time.Sleep(2 * time.Second)
		c.Publish(c.NewMessage(hal.CapControl(addr, "ramp"), types.SoftPWMRamp{
			ToNs: 9_000_000, DurationMs: 3000, Steps: 30,
		}, false))
	}()

	for {
		select {
		case <-ctx.Done():
			println("shutdown")
			return
		case m := <-stateSub.Channel():
			if st, ok := m.Payload.(types.HALState); ok {
				println("hal:", st.Level, st.Status)
			}
		case m := <-valueSub.Channel():
			if v, ok := m.Payload.(types.SoftPWMValue); ok {
				pct := int64(0)
				if v.PeriodNs > 0 {
					pct = int64(v.DutyNs * 100 / v.PeriodNs)
				}
				println("pwm: running =", v.Running, "duty =", pct, "%")
			}
		}
	}
}
