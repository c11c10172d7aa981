package types

// ------------------------
// Software PWM (timer-toggled GPIO line)
// ------------------------

// SoftPWMInfo is published under hal/cap/.../info as Info.Detail.
type SoftPWMInfo struct {
	Pin      int    `json:"pin"`
	Inverted bool   `json:"inverted"`
	DutyNs   uint64 `json:"duty_ns,omitempty"`
	PeriodNs uint64 `json:"period_ns,omitempty"`
	HighRes  bool   `json:"high_res"` // false when the timer source is coarse
}

// SoftPWMValue is published under hal/cap/.../value (retained).
type SoftPWMValue struct {
	Running  bool   `json:"running"`
	DutyNs   uint64 `json:"duty_ns"`
	PeriodNs uint64 `json:"period_ns"`
	Inverted bool   `json:"inverted"`
}

// Control payloads.

// SoftPWMConfigure carries new timing; verb "configure".
type SoftPWMConfigure struct {
	DutyNs   uint64 `json:"duty_ns"`
	PeriodNs uint64 `json:"period_ns"`
}

// SoftPWMPolarity flips the active level; verb "set_polarity".
type SoftPWMPolarity struct {
	Inverted bool `json:"inverted"`
}

// SoftPWMRamp moves the duty linearly to a target; verb "ramp".
type SoftPWMRamp struct {
	ToNs       uint64 `json:"to_ns"`       // target duty, clamped to the period
	DurationMs uint32 `json:"duration_ms"` // total duration
	Steps      uint16 `json:"steps"`       // number of steps (>0)
}
