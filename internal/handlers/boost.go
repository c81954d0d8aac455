package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

// boostHandler tracks a car's boost component.
type boostHandler struct{}

func (boostHandler) Create(*frames.Data, *State, int32) {}

func (boostHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	p := s.componentPlayer(d, actor)
	if p == nil {
		return
	}
	v, ok := s.Attr(actor, attr)
	if !ok {
		return
	}
	switch attr {
	case AttrActive:
		if b, ok := v.(attributes.Byte); ok {
			p.SetBoostActive(s.Frame, uint8(b), s.Delta, s.boostRate())
		}
	case AttrBoostAmount:
		if b, ok := v.(attributes.Byte); ok {
			p.SetBoostAmount(s.Frame, float32(b))
		}
	case AttrBoostStruct:
		if rb, ok := v.(attributes.ReplicatedBoost); ok {
			p.SetBoostAmount(s.Frame, float32(rb.BoostAmount))
		}
	}
}

func (boostHandler) Destroy(d *frames.Data, s *State, actor int32) {
	if p := s.componentPlayer(d, actor); p != nil {
		p.ClearBoost(s.Frame)
	}
}

// boostPadHandler detects pickups from a pad's pickup data.
type boostPadHandler struct{}

func (boostPadHandler) Create(*frames.Data, *State, int32) {}

func (boostPadHandler) Update(d *frames.Data, s *State, pad int32, attr string) {
	v, ok := s.Attr(pad, attr)
	if !ok {
		return
	}
	var instigator *int32
	switch pv := v.(type) {
	case attributes.Pickup:
		instigator = pv.Instigator
	case attributes.PickupNew:
		instigator = pv.Instigator
	default:
		return
	}
	if instigator == nil {
		return
	}
	pid, ok := s.CarPlayerID(*instigator)
	if !ok {
		return
	}
	p := d.Players[pid]
	if p == nil {
		return
	}
	if collected, _ := p.BoostCollect.Get(s.Frame); collected {
		return
	}
	cur, ok := p.Boost.Get(s.Frame)
	if !ok {
		return
	}
	prev, ok := p.Boost.LastBefore(s.Frame)
	if !ok {
		return
	}
	// Amounts at or above the ceiling are replication noise, not pickups.
	if prev >= s.Tuning.Boost.PickupCeiling || cur <= prev {
		return
	}
	p.BoostCollect.Set(s.Frame, true)
	p.BoostPickups++
	d.BoostPickups = append(d.BoostPickups, frames.BoostPickup{
		Frame:    s.Frame,
		Player:   pid,
		Pad:      pad,
		Previous: prev,
		Amount:   cur,
	})
}

func (boostPadHandler) Destroy(*frames.Data, *State, int32) {}
