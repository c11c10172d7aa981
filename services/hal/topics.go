package hal

import "softpwm-go/bus"

// Topic layout:
//   config/hal                                   retained configuration
//   hal/state                                    retained service state
//   hal/cap/<domain>/<kind>/<name>/info          retained
//   hal/cap/<domain>/<kind>/<name>/status        retained
//   hal/cap/<domain>/<kind>/<name>/value         retained
//   hal/cap/<domain>/<kind>/<name>/event[/<tag>] non-retained
//   hal/cap/<domain>/<kind>/<name>/control/<verb>

func topicConfigHAL() bus.Topic { return bus.T("config", "hal") }
func topicHALState() bus.Topic  { return bus.T("hal", "state") }

func capBase(a CapAddr) bus.Topic { return bus.T("hal", "cap", a.Domain, a.Kind, a.Name) }

func capInfo(a CapAddr) bus.Topic   { return capBase(a).Append("info") }
func capStatus(a CapAddr) bus.Topic { return capBase(a).Append("status") }
func capValue(a CapAddr) bus.Topic  { return capBase(a).Append("value") }
func capEvent(a CapAddr) bus.Topic  { return capBase(a).Append("event") }
func capEventTagged(a CapAddr, tag string) bus.Topic {
	return capEvent(a).Append(tag)
}

// CapControl is the control topic for a capability; exported for
// callers composing requests.
func CapControl(a CapAddr, verb string) bus.Topic {
	return capBase(a).Append("control", verb)
}

// hal/cap/+/+/+/control/+
func ctrlWildcard() bus.Topic {
	return bus.T("hal", "cap", bus.Wildcard, bus.Wildcard, bus.Wildcard, "control", bus.Wildcard)
}
