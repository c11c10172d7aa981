// services/hal/hal.go
package hal

import (
	"context"

	"softpwm-go/bus"
	"softpwm-go/errcode"
	"softpwm-go/types"
	"softpwm-go/x/timex"
)

const eventQueueLen = 16

// HAL builds devices from the retained configuration on config/hal and
// forwards capability control verbs to them. All bus publication
// happens from the single Run goroutine.
type HAL struct {
	conn *bus.Connection
	res  Resources

	dev      map[string]Device // devID -> device
	capIndex map[CapAddr]string

	cfgSub  *bus.Subscription
	ctrlSub *bus.Subscription

	evCh chan Event
}

func NewHAL(conn *bus.Connection, res Resources) *HAL {
	h := &HAL{
		conn:     conn,
		res:      res,
		dev:      map[string]Device{},
		capIndex: map[CapAddr]string{},
		evCh:     make(chan Event, eventQueueLen),
	}
	// HAL provides the emitter to devices.
	h.res.Pub = h
	return h
}

func (h *HAL) Run(ctx context.Context) {
	h.cfgSub = h.conn.Subscribe(topicConfigHAL())
	h.ctrlSub = h.conn.Subscribe(ctrlWildcard())
	defer h.conn.Unsubscribe(h.cfgSub)
	defer h.conn.Unsubscribe(h.ctrlSub)

	h.pubHALState("idle", "awaiting_config")

	ready := false
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.pubHALState("stopped", "context_cancelled")
			return
		case msg := <-h.cfgSub.Channel():
			if cfg, ok := msg.Payload.(types.HALConfig); ok {
				h.applyConfig(ctx, cfg)
				if !ready {
					ready = true
					h.pubHALState("ready", "configured")
				}
			}
		case m := <-h.ctrlSub.Channel():
			if !ready {
				h.replyErr(m, errcode.HALNotReady)
				continue
			}
			h.handleControl(m)
		case ev := <-h.evCh:
			h.handleEvent(ev)
		}
	}
}

// applyConfig is additive and idempotent for existing devices; devices
// absent from the new config are closed and their capabilities retired.
func (h *HAL) applyConfig(ctx context.Context, cfg types.HALConfig) {
	seen := map[string]struct{}{}

	for i := range cfg.Devices {
		dc := cfg.Devices[i]
		seen[dc.ID] = struct{}{}
		if _, exists := h.dev[dc.ID]; exists {
			continue
		}
		b, ok := lookupBuilder(dc.Type)
		if !ok {
			println("[hal] no builder for type:", dc.Type, "id:", dc.ID)
			continue
		}
		dev, err := b.Build(ctx, BuilderInput{
			ID:     dc.ID,
			Type:   dc.Type,
			Params: dc.Params,
			Res:    h.res,
		})
		if err != nil {
			println("[hal] build failed for:", dc.ID, "err:", err.Error())
			continue
		}
		if err := dev.Init(ctx); err != nil {
			// No partial state: give back whatever Build claimed.
			_ = dev.Close()
			println("[hal] init failed for:", dc.ID, "err:", err.Error())
			continue
		}
		h.dev[dev.ID()] = dev

		for _, cs := range dev.Capabilities() {
			addr := CapAddr{Domain: cs.Domain, Kind: string(cs.Kind), Name: cs.Name}
			if addr.Name == "" {
				addr.Name = dev.ID()
			}
			h.capIndex[addr] = dev.ID()

			h.conn.Publish(h.conn.NewMessage(capInfo(addr), cs.Info, true))
			h.conn.Publish(h.conn.NewMessage(
				capStatus(addr),
				types.CapabilityStatus{Link: types.LinkUp, TSms: timex.NowMs()},
				true,
			))
		}
	}

	// Tidy-up: retire devices not in the config.
	for devID, dev := range h.dev {
		if _, ok := seen[devID]; ok {
			continue
		}
		for addr, owner := range h.capIndex {
			if owner != devID {
				continue
			}
			h.conn.Publish(h.conn.NewMessage(capInfo(addr), nil, true))
			h.conn.Publish(h.conn.NewMessage(
				capStatus(addr),
				types.CapabilityStatus{Link: types.LinkDown, TSms: timex.NowMs()},
				true,
			))
			delete(h.capIndex, addr)
		}
		_ = dev.Close()
		delete(h.dev, devID)
	}
}

func (h *HAL) handleControl(msg *bus.Message) {
	// hal/cap/<domain>/<kind>/<name>/control/<verb>
	if msg.Topic.Len() < 7 {
		h.replyErr(msg, errcode.InvalidTopic)
		return
	}
	addr := CapAddr{
		Domain: msg.Topic.At(2),
		Kind:   msg.Topic.At(3),
		Name:   msg.Topic.At(4),
	}
	verb := msg.Topic.At(6)

	ownerID, ok := h.capIndex[addr]
	if !ok {
		h.replyErr(msg, errcode.UnknownCapability)
		return
	}
	dev := h.dev[ownerID]
	if dev == nil {
		h.replyErr(msg, errcode.Error)
		return
	}

	res, err := dev.Control(addr, verb, msg.Payload)
	if err != nil {
		h.replyFromError(msg, err)
		return
	}
	if !msg.CanReply() {
		return
	}
	if res.OK {
		h.replyOK(msg)
		return
	}
	code := res.Error
	if code == "" {
		code = errcode.Busy
	}
	h.conn.Reply(msg, types.ErrorReply{OK: false, Error: string(code)}, false)
}

func (h *HAL) handleEvent(ev Event) {
	if ev.Err != "" {
		h.conn.Publish(h.conn.NewMessage(
			capStatus(ev.Addr),
			types.CapabilityStatus{Link: types.LinkDegraded, TSms: ev.TSms, Error: ev.Err},
			true,
		))
		return
	}
	if ev.IsEvent {
		if ev.EventTag != "" {
			h.conn.Publish(h.conn.NewMessage(capEventTagged(ev.Addr, ev.EventTag), ev.Payload, false))
		} else {
			h.conn.Publish(h.conn.NewMessage(capEvent(ev.Addr), ev.Payload, false))
		}
		return
	}
	h.conn.Publish(h.conn.NewMessage(capValue(ev.Addr), ev.Payload, true))
	h.conn.Publish(h.conn.NewMessage(
		capStatus(ev.Addr),
		types.CapabilityStatus{Link: types.LinkUp, TSms: ev.TSms},
		true,
	))
}

func (h *HAL) closeAll() {
	for devID, dev := range h.dev {
		_ = dev.Close()
		delete(h.dev, devID)
	}
}

func (h *HAL) pubHALState(level, status string) {
	h.conn.Publish(h.conn.NewMessage(
		topicHALState(),
		types.HALState{Level: level, Status: status, TSms: timex.NowMs()},
		true,
	))
}

// ---- HAL as EventEmitter (enqueue to the single publisher) ----

func (h *HAL) Emit(ev Event) bool {
	select {
	case h.evCh <- ev:
		return true
	default:
		return false
	}
}
