package handlers

import (
	"github.com/rs/zerolog/log"

	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

type carHandler struct{}

func (carHandler) Create(*frames.Data, *State, int32) {}

func (carHandler) Update(d *frames.Data, s *State, car int32, attr string) {
	pri, ok := s.ActorRef(car, AttrPawnPRI)
	if !ok {
		return
	}
	s.CarPlayer[car] = pri
	v, ok := s.Attr(car, attr)
	if !ok {
		return
	}
	if attr == AttrDemolish {
		if dm, ok := v.(attributes.Demolish); ok {
			recordDemolition(d, s, dm)
		}
		return
	}

	p := d.Players[pri]
	if p == nil {
		return
	}
	switch attr {
	case AttrRBState:
		if rb, ok := v.(attributes.RigidBody); ok {
			p.Body.Record(s.Frame, rb, true)
		}
	case AttrThrottle:
		if b, ok := v.(attributes.Byte); ok {
			p.Throttle.Set(s.Frame, uint8(b))
		}
	case AttrSteer:
		if b, ok := v.(attributes.Byte); ok {
			p.Steer.Set(s.Frame, uint8(b))
		}
	case AttrHandbrake:
		if b, ok := v.(attributes.Boolean); ok {
			p.Handbrake.Set(s.Frame, bool(b))
		}
	case AttrTeamPaint:
		if tp, ok := v.(attributes.TeamPaint); ok {
			p.Paint = &tp
		}
	}
}

func (carHandler) Destroy(d *frames.Data, s *State, car int32) {
	if p := s.carPlayer(d, car); p != nil {
		p.RetireCar(s.Frame)
	}
}

// recordDemolition appends a demolition keyed by player ids. The same
// demolish value is replicated on both cars, so exact repeats are dropped.
func recordDemolition(d *frames.Data, s *State, dm attributes.Demolish) {
	if dm.Attacker == -1 || dm.Victim == -1 {
		return
	}
	attacker, ok := s.CarPlayerID(dm.Attacker)
	if !ok {
		return
	}
	victim, ok := s.CarPlayerID(dm.Victim)
	if !ok {
		return
	}
	demo := frames.Demolition{
		Frame:            s.Frame,
		Attacker:         attacker,
		Victim:           victim,
		AttackerVelocity: dm.AttackVelocity,
		VictimVelocity:   dm.VictimVelocity,
	}
	if d.HasDemolition(demo) {
		log.Debug().Int("frame", s.Frame).Int32("attacker", attacker).Int32("victim", victim).Msg("duplicate demolition dropped")
		return
	}
	d.Demolitions = append(d.Demolitions, demo)

	p := d.Players[victim]
	if p == nil || s.Frame == 0 {
		return
	}
	if active, ok := p.PowerUpActive.Get(s.Frame - 1); ok && !active {
		p.MarkLastUnusedDemoed()
	}
}
