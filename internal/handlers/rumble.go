package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

// rumbleHandler tracks one special pickup component.
type rumbleHandler struct {
	item string
}

func (rumbleHandler) Create(*frames.Data, *State, int32) {}

func (h rumbleHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	p := s.componentPlayer(d, actor)
	if p == nil {
		return
	}
	switch attr {
	case AttrVehicle:
		p.PowerUp.Set(s.Frame, h.item)
		p.PowerUpActive.Set(s.Frame, false)
		// A demolished player who gets the same item back keeps the pickup.
		if last := p.LastRumbleItem(); last != nil && last.Demoed && last.Item == h.item {
			last.Demoed = false
			return
		}
		p.RumbleItems = append(p.RumbleItems, frames.RumbleItem{Item: h.item, GetFrame: s.Frame})
	case AttrActive:
		v, _ := s.Attr(actor, attr)
		b, ok := v.(attributes.Byte)
		if !ok {
			return
		}
		active := b%2 == 1
		was := wasActive(p, s.Frame)
		p.PowerUp.Set(s.Frame, h.item)
		p.PowerUpActive.Set(s.Frame, active)
		if active && !was && s.ShouldCollectStats && s.Frame > 0 {
			markUsed(p, s.Frame)
		}
	}
}

func (h rumbleHandler) Destroy(d *frames.Data, s *State, actor int32) {
	p := s.componentPlayer(d, actor)
	if p == nil {
		return
	}
	if h.item == s.Tuning.Rumble.FreezeItem && wasActive(p, s.Frame) {
		// The freeze can end by deletion with no deactivation update.
		markUsed(p, s.Frame)
	} else if !s.ShouldCollectStats {
		if last := p.LastRumbleItem(); last != nil {
			last.Demoed = false
		}
	}
	p.PowerUp.Clear(s.Frame)
	p.PowerUpActive.Clear(s.Frame)
}

func wasActive(p *frames.Player, tick int) bool {
	if tick == 0 {
		return false
	}
	active, _ := p.PowerUpActive.Get(tick - 1)
	return active
}

func markUsed(p *frames.Player, tick int) {
	if last := p.LastRumbleItem(); last != nil && last.UseFrame == nil {
		used := tick
		last.UseFrame = &used
	}
}
