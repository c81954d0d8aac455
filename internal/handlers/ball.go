package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

type ballHandler struct {
	kind frames.BallType
}

func (h ballHandler) Create(d *frames.Data, s *State, _ int32) {
	d.Ball.Type.Set(s.Frame, h.kind)
}

func (h ballHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	v, ok := s.Attr(actor, attr)
	if !ok {
		return
	}
	switch attr {
	case AttrRBState:
		if rb, ok := v.(attributes.RigidBody); ok {
			d.Ball.Body.Record(s.Frame, rb, false)
		}
	case AttrHitTeam:
		if b, ok := v.(attributes.Byte); ok {
			d.Ball.HitTeam.Set(s.Frame, uint8(b))
		}
	case AttrDamageIndex:
		if h.kind != frames.BallBreakout {
			return
		}
		phase, ok := v.(attributes.Int)
		if !ok {
			return
		}
		prev, _ := d.Ball.Phase.LastBefore(s.Frame)
		d.Ball.Phase.Set(s.Frame, int32(phase))
		if s.Frame == 0 || int32(phase) <= prev {
			return
		}
		team, ok := s.Attr(actor, AttrLastTeam)
		if !ok {
			return
		}
		if b, ok := team.(attributes.Byte); ok {
			d.Dropshot.BallEvents = append(d.Dropshot.BallEvents, frames.BallPhaseEvent{
				Frame: s.Frame,
				Phase: int32(phase),
				Team:  uint8(b),
			})
		}
	}
}

// Destroy clears the pose only; the ball type is kept across respawns.
func (ballHandler) Destroy(d *frames.Data, s *State, _ int32) {
	d.Ball.Body.Clear(s.Frame)
}
